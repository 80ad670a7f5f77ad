package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProbeDurationMinutes asks ffprobe for the length of a media file or URL and
// rounds it up to whole minutes.
func ProbeDurationMinutes(source string) (int, error) {
	jsonOutput, err := ffmpeg.Probe(source)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", source, err)
	}

	var result struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return 0, fmt.Errorf("decode probe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", result.Format.Duration, err)
	}
	return MinutesFromSeconds(seconds), nil
}

func MinutesFromSeconds(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(math.Ceil(seconds / 60))
}
