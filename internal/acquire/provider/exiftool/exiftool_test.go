// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

package exiftool

import (
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("empty binary path falls back to exiftool", func(t *testing.T) {
		provider := New("")
		if provider.binary != "exiftool" {
			t.Errorf("expected binary to be exiftool, got %q", provider.binary)
		}
	})
	t.Run("custom binary path is kept", func(t *testing.T) {
		provider := New("/opt/exiftool/exiftool")
		if provider.binary != "/opt/exiftool/exiftool" {
			t.Errorf("expected binary to be /opt/exiftool/exiftool, got %q", provider.binary)
		}
	})
}

func TestProvider_Name(t *testing.T) {
	provider := New("")
	if provider.Name() != "exiftool" {
		t.Errorf("expected provider name to be exiftool, got %s", provider.Name())
	}
}

func Test_parseCoordinates(t *testing.T) {
	t.Run("decimal degree pair is parsed", func(t *testing.T) {
		coord, err := parseCoordinates("-22.5609\t17.0658\n")
		if err != nil {
			t.Fatalf("failed to parse coordinates: %s", err)
		}
		if coord == nil {
			t.Fatal("expected a coordinate, got nil")
		}
		if coord.Latitude != -22.5609 {
			t.Errorf("expected latitude to be -22.5609, got %f", coord.Latitude)
		}
		if coord.Longitude != 17.0658 {
			t.Errorf("expected longitude to be 17.0658, got %f", coord.Longitude)
		}
	})
	t.Run("missing geotag yields no coordinate and no error", func(t *testing.T) {
		for _, output := range []string{"-\t-\n", "-\t17.0658\n", "-22.5609\t-\n"} {
			coord, err := parseCoordinates(output)
			if err != nil {
				t.Errorf("expected no error for %q, got %s", output, err)
			}
			if coord != nil {
				t.Errorf("expected no coordinate for %q, got %s", output, coord)
			}
		}
	})
	t.Run("malformed output fails", func(t *testing.T) {
		for _, output := range []string{"", "garbage", "a\tb\n", "1\t2\t3\n"} {
			if _, err := parseCoordinates(output); err == nil {
				t.Errorf("expected parsing %q to fail, but didn't", output)
			}
		}
	})
	t.Run("out of range geotag fails", func(t *testing.T) {
		if _, err := parseCoordinates("95.0\t17.0658\n"); err == nil {
			t.Error("expected parsing to fail, but didn't")
		}
	})
}
