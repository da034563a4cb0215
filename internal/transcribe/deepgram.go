package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const deepgramListenURL = "https://api.deepgram.com/v1/listen"

// deepgramEngine is the primary recognition backend. It posts the raw bytes
// with language detection enabled, a candidate hint-language list and
// vocabulary keyword boosts.
type deepgramEngine struct {
	apiKey   string
	hints    []string
	keywords []string
	hc       *http.Client
}

func NewDeepgramEngine(apiKey string, hintLanguages, keywords []string) Engine {
	return &deepgramEngine{
		apiKey:   apiKey,
		hints:    hintLanguages,
		keywords: keywords,
		hc:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *deepgramEngine) Name() string { return "deepgram" }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *deepgramEngine) Transcribe(ctx context.Context, audioPath, mimeType string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if len(d.hints) == 0 {
		q.Set("detect_language", "true")
	} else {
		for _, lang := range d.hints {
			q.Add("detect_language", lang)
		}
	}
	for _, kw := range d.keywords {
		q.Add("keywords", kw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepgramListenURL+"?"+q.Encode(), f)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("deepgram http %d: %s", resp.StatusCode, string(b))
	}

	var dr deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return Result{}, err
	}
	if len(dr.Results.Channels) == 0 {
		return Result{Language: LangUnknown}, nil
	}
	ch := dr.Results.Channels[0]
	out := Result{Language: LangUnknown}
	if lang := strings.TrimSpace(ch.DetectedLanguage); lang != "" {
		out.Language = strings.ToLower(lang)
	}
	if len(ch.Alternatives) > 0 {
		out.Text = strings.TrimSpace(ch.Alternatives[0].Transcript)
	}
	return out, nil
}
