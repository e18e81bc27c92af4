package disc

import "testing"

func TestTrackIsForced(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected bool
	}{
		{
			name:     "forced english subtitle",
			track:    Track{Type: TrackTypeSubtitle, Name: "PGS English  (forced only)", Language: "eng"},
			expected: true,
		},
		{
			name:     "regular english subtitle",
			track:    Track{Type: TrackTypeSubtitle, Name: "PGS English", Language: "eng"},
			expected: false,
		},
		{
			name:     "forced subtitle mixed case",
			track:    Track{Type: TrackTypeSubtitle, Name: "pgs english (Forced Only)", Language: "eng"},
			expected: true,
		},
		{
			name:     "audio track with forced in name",
			track:    Track{Type: TrackTypeAudio, Name: "English (forced only)"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.IsForced(); got != tt.expected {
				t.Errorf("IsForced() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrackLabelFallbacks(t *testing.T) {
	tests := []struct {
		track Track
		want  string
	}{
		{Track{Description: "Director Commentary", Name: "Stereo"}, "Director Commentary"},
		{Track{Name: "Main Audio"}, "Main Audio"},
		{Track{LanguageName: "English", CodecLong: "Dolby TrueHD"}, "English Dolby TrueHD"},
		{Track{Language: "fra", CodecShort: "AC3"}, "fra AC3"},
		{Track{}, ""},
	}
	for _, tt := range tests {
		if got := tt.track.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestTrackIsUHD(t *testing.T) {
	if !(Track{Type: TrackTypeVideo, Resolution: "3840x2160"}).IsUHD() {
		t.Fatal("expected 3840x2160 video to be UHD")
	}
	if (Track{Type: TrackTypeVideo, Resolution: "1920x1080"}).IsUHD() {
		t.Fatal("expected 1080p video not to be UHD")
	}
	if (Track{Type: TrackTypeAudio, Resolution: "3840x2160"}).IsUHD() {
		t.Fatal("expected audio track not to be UHD")
	}
}
