package scan

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

func TestIsAudioFile(t *testing.T) {
	scanner := &Scanner{
		extensions: map[string]bool{
			".mp3":  true,
			".flac": true,
			".m4a":  true,
		},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.mp3", true},
		{"test.MP3", true}, // Case insensitive
		{"test.flac", true},
		{"test.m4a", true},
		{"test.txt", false},
		{"test.jpg", false},
		{"test", false},
		{".mp3", true},
	}

	for _, tt := range tests {
		result := scanner.isAudioFile(tt.path)
		if result != tt.expected {
			t.Errorf("isAudioFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestScanReleaseDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cd2 := filepath.Join(tmpDir, "CD2")
	os.MkdirAll(cd2, 0755)
	os.MkdirAll(filepath.Join(tmpDir, ".hidden"), 0755)

	testFiles := []string{
		filepath.Join(tmpDir, "02 - Two.flac"),
		filepath.Join(tmpDir, "01 - One.flac"),
		filepath.Join(cd2, "01 - Three.flac"),
		filepath.Join(tmpDir, "scan.log"),
		filepath.Join(tmpDir, "old.m3u"),
		filepath.Join(tmpDir, ".DS_Store"),
		filepath.Join(tmpDir, ".hidden", "x.mp3"),
	}
	for _, path := range testFiles {
		if err := os.WriteFile(path, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	src, err := ListAudioFiles(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expectedAudio := []string{
		filepath.Join(tmpDir, "01 - One.flac"),
		filepath.Join(tmpDir, "02 - Two.flac"),
		filepath.Join(cd2, "01 - Three.flac"),
	}
	if !reflect.DeepEqual(src.Audio, expectedAudio) {
		t.Errorf("Audio = %v, expected %v", src.Audio, expectedAudio)
	}

	expectedOther := []string{filepath.Join(tmpDir, "scan.log")}
	if !reflect.DeepEqual(src.Other, expectedOther) {
		t.Errorf("Other = %v, expected %v", src.Other, expectedOther)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	if _, err := ListAudioFiles(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ListAudioFiles(ctx, t.TempDir()); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAdditionalExtensions(t *testing.T) {
	s := New(&Config{AdditionalExts: []string{"DSF", ".dff"}})
	exts := s.GetSupportedExtensions()
	for _, want := range []string{".dsf", ".dff", ".flac"} {
		if !slices.Contains(exts, want) {
			t.Errorf("expected %s in %v", want, exts)
		}
	}
}
