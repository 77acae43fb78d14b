// Package voice defines the record a speech collaborator attaches to
// a session. The collaborator transcribes audio and measures it; this
// package only carries the result. Nothing in the scoring or
// rendering path reads these values.
package voice

import "fmt"

// Tone is the collaborator's four-way emotional read of a recording.
type Tone uint8

const (
	ToneCalm Tone = iota
	ToneExcited
	ToneMelancholic
	ToneIntense
)

var toneNames = [...]string{"calm", "excited", "melancholic", "intense"}

func (t Tone) String() string {
	if int(t) < len(toneNames) {
		return toneNames[t]
	}
	return fmt.Sprintf("tone(%d)", uint8(t))
}

// ParseTone maps a wire label back to its Tone.
func ParseTone(s string) (Tone, error) {
	for i, name := range toneNames {
		if s == name {
			return Tone(i), nil
		}
	}
	return ToneCalm, fmt.Errorf("unknown tone %q", s)
}

func (t Tone) MarshalJSON() ([]byte, error) {
	if int(t) >= len(toneNames) {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(`"` + toneNames[t] + `"`), nil
}

func (t *Tone) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("tone must be a string, got %s", data)
	}
	parsed, err := ParseTone(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SilenceInterval marks one stretch of the recording below the
// collaborator's silence threshold. Offsets are seconds from the
// start of the recording.
type SilenceInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Analysis is the full measurement record for one recording. Volumes
// are normalized to [0, 1]; SpeechRate is words per minute over the
// non-silent stretches.
type Analysis struct {
	Duration      float64           `json:"duration"`
	AverageVolume float64           `json:"averageVolume"`
	PeakVolume    float64           `json:"peakVolume"`
	Silences      []SilenceInterval `json:"silences"`
	SpeechRate    float64           `json:"speechRate"`
	Tone          Tone              `json:"tone"`
}
