package config

import (
	"os"
	"path/filepath"
	"testing"

	"strumboli/lib/tablet"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Strumming.PressureThreshold != 0.1 {
		t.Errorf("pressureThreshold = %f", cfg.Strumming.PressureThreshold)
	}
	if got := cfg.Strumming.InitialNotes; len(got) != 3 || got[0] != "C4" || got[2] != "G4" {
		t.Errorf("initialNotes = %v", got)
	}
	if cfg.NoteDuration.Spread != "inverse" || cfg.NoteDuration.Control != "tiltXY" {
		t.Errorf("noteDuration = %+v", cfg.NoteDuration)
	}
	if cfg.PitchBend.Curve != 4.0 || cfg.PitchBend.Spread != "central" {
		t.Errorf("pitchBend = %+v", cfg.PitchBend)
	}
	if cfg.StylusButtons.PrimaryButton.Action != "toggle-transpose" {
		t.Errorf("primary button = %+v", cfg.StylusButtons.PrimaryButton)
	}
	if cfg.Transpose.Semitones != 12 || cfg.Transpose.Active {
		t.Errorf("transpose = %+v", cfg.Transpose)
	}
	if cfg.StrumRelease.MidiNote != 38 || cfg.StrumRelease.MaxDuration != 0.25 {
		t.Errorf("strumRelease = %+v", cfg.StrumRelease)
	}

	m, ok := cfg.Startup.DrawingTablet.Tablet.Mappings["pressure"]
	if !ok || m.Kind != tablet.KindRange || m.Max != 63 {
		t.Errorf("pressure mapping = %+v", m)
	}
	status := cfg.Startup.DrawingTablet.Tablet.Mappings["status"]
	entry, ok := status.Values[165]
	if !ok || entry.State != "contact" || !entry.Flags["primaryButtonPressed"] {
		t.Errorf("status 165 = %+v", entry)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{
		"strumming": {"pressureThreshold": 0.25, "midiChannel": 3},
		"transpose": {"active": true}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Strumming.PressureThreshold != 0.25 {
		t.Errorf("override lost: %f", cfg.Strumming.PressureThreshold)
	}
	if cfg.Strumming.MidiChannel != 3 {
		t.Errorf("midiChannel = %d", cfg.Strumming.MidiChannel)
	}
	if !cfg.Transpose.Active || cfg.Transpose.Semitones != 12 {
		t.Errorf("partial section must keep defaults: %+v", cfg.Transpose)
	}
	if cfg.Startup.DrawingTablet.Tablet.ReportID != 2 {
		t.Errorf("reportId = %d, want default 2", cfg.Startup.DrawingTablet.Tablet.ReportID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"), "")
	if err != nil {
		t.Fatalf("missing settings must not fail: %v", err)
	}
	if cfg.Strumming.PressureThreshold != 0.1 {
		t.Error("defaults not applied")
	}
}

func TestLoadDriverProfile(t *testing.T) {
	dir := t.TempDir()
	driver := filepath.Join(dir, "test-tablet.json")
	if err := os.WriteFile(driver, []byte(`{
		"name": "Test Tablet",
		"product": "Testy",
		"vendorId": 10429,
		"productId": 2338,
		"reportId": 7,
		"byteCodeMappings": {
			"pressure": {"byteIndex": 2, "max": 255, "type": "range"}
		}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	settings := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(settings, []byte(`{
		"startupConfiguration": {"drawingTablet": "test-tablet"}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(settings, dir)
	if err != nil {
		t.Fatal(err)
	}
	tab := cfg.Startup.DrawingTablet.Tablet
	if tab.Product != "Testy" || tab.ReportID != 7 || tab.VendorID != 10429 {
		t.Errorf("driver profile not applied: %+v", tab)
	}
	if _, ok := tab.Mappings["pressure"]; !ok {
		t.Error("driver mappings missing")
	}
}

func TestLoadUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(settings, []byte(`{
		"startupConfiguration": {"drawingTablet": "no-such-driver"}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(settings, dir); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestBindingForms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{
		"stylusButtons": {
			"primaryButtonAction": ["set-strum-chord", "Am"],
			"secondaryButtonAction": "progression-next"
		}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.StylusButtons.PrimaryButton
	if p.Action != "set-strum-chord" || p.Arg != "Am" {
		t.Errorf("pair binding = %+v", p)
	}
	if cfg.StylusButtons.SecondaryButton.Action != "progression-next" {
		t.Errorf("string binding = %+v", cfg.StylusButtons.SecondaryButton)
	}
}

func TestTabletButtonsPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"tabletButtons": "axis-of-awesome"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.TabletButtons) != 8 {
		t.Fatalf("expanded buttons = %d, want 8", len(cfg.TabletButtons))
	}
	// 4-chord progression wraps: button 5 repeats chord 1
	if b := cfg.TabletButtons[1]; b.Action != "set-strum-chord" || b.Arg != "C" {
		t.Errorf("button 1 = %+v", b)
	}
	if b := cfg.TabletButtons[5]; b.Arg != "C" {
		t.Errorf("button 5 = %+v, want wrap to C", b)
	}
	if b := cfg.TabletButtons[2]; b.Arg != "G" {
		t.Errorf("button 2 = %+v", b)
	}
}

func TestTabletButtonsExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{
		"tabletButtons": {
			"1": ["set-strum-chord", "Em"],
			"8": "toggle-repeater",
			"9": "toggle-transpose"
		}
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if b := cfg.TabletButtons[1]; b.Arg != "Em" {
		t.Errorf("button 1 = %+v", b)
	}
	if b := cfg.TabletButtons[8]; b.Action != "toggle-repeater" {
		t.Errorf("button 8 = %+v", b)
	}
	if _, ok := cfg.TabletButtons[9]; ok {
		t.Error("button 9 must be rejected")
	}
}
