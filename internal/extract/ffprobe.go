package extract

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
)

// ffprobeInfo is the subset of ffprobe's JSON output this package reads.
type ffprobeInfo struct {
	Streams []ffprobeStream `json:"streams"`
	Format  *ffprobeFormat  `json:"format"`
}

// intOrString unmarshals either a JSON integer or a numeric string, which
// ffprobe mixes depending on field and container.
type intOrString struct {
	Value int
}

func (i *intOrString) UnmarshalJSON(data []byte) error {
	var intVal int
	if err := json.Unmarshal(data, &intVal); err == nil {
		i.Value = intVal
		return nil
	}
	var strVal string
	if err := json.Unmarshal(data, &strVal); err != nil {
		return err
	}
	if strVal == "" || strVal == "N/A" {
		i.Value = 0
		return nil
	}
	parsed, err := strconv.Atoi(strVal)
	if err != nil {
		i.Value = 0
		return nil
	}
	i.Value = parsed
	return nil
}

type ffprobeStream struct {
	CodecType        string      `json:"codec_type"`
	SampleRate       int         `json:"sample_rate,string"`
	Channels         int         `json:"channels"`
	BitsPerSample    intOrString `json:"bits_per_sample"`
	BitsPerRawSample intOrString `json:"bits_per_raw_sample"`
	BitRate          string      `json:"bit_rate"`
}

type ffprobeFormat struct {
	Duration string            `json:"duration"`
	BitRate  string            `json:"bit_rate"`
	Tags     map[string]string `json:"tags"`
}

// runFFprobe runs ffprobe on path and parses its JSON output. Callers treat
// a non-nil error as "no audio-header data available" rather than a fatal
// failure (spec §4.2: extraction never throws).
func runFFprobe(path string) (*ffprobeInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, apperr.NotFound("extract.runFFprobe", err)
	}

	cmd := exec.Command("ffprobe", "-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.ExtractionFailure("extract.runFFprobe", fmt.Errorf("ffprobe: %w", err))
	}

	var info ffprobeInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, apperr.ExtractionFailure("extract.runFFprobe", fmt.Errorf("parse ffprobe output: %w", err))
	}
	return &info, nil
}

// audioHeader captures the fields dhowden/tag doesn't expose.
type audioHeader struct {
	DurationSeconds int
	SampleRate      int
	BitRateKbps     int
}

func readAudioHeader(path string) (*audioHeader, error) {
	info, err := runFFprobe(path)
	if err != nil {
		return nil, err
	}

	h := &audioHeader{}
	if info.Format != nil {
		if d, err := strconv.ParseFloat(info.Format.Duration, 64); err == nil {
			h.DurationSeconds = int(d)
		}
		if br, err := strconv.Atoi(info.Format.BitRate); err == nil {
			h.BitRateKbps = br / 1000
		}
	}
	for _, s := range info.Streams {
		if s.CodecType != "audio" {
			continue
		}
		h.SampleRate = s.SampleRate
		if h.BitRateKbps == 0 {
			if br, err := strconv.Atoi(s.BitRate); err == nil {
				h.BitRateKbps = br / 1000
			}
		}
		break
	}
	return h, nil
}

// ffprobeAvailable reports whether ffprobe can be invoked at all; surfaced
// to callers that want to report degraded extraction up front.
func ffprobeAvailable() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}
