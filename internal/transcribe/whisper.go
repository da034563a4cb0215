package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const whisperURL = "https://api.openai.com/v1/audio/transcriptions"

// whisperEngine is the secondary recognition backend, only wired in when
// credentials are configured. verbose_json gives us the detected language
// as a spelled-out name, mapped back to a code through the label table.
type whisperEngine struct {
	apiKey string
	model  string
	hc     *http.Client
}

func NewWhisperEngine(apiKey string) Engine {
	return &whisperEngine{
		apiKey: apiKey,
		model:  "whisper-1",
		hc:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *whisperEngine) Name() string { return "whisper" }

type whisperResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (w *whisperEngine) Transcribe(ctx context.Context, audioPath, mimeType string) (Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", w.model); err != nil {
		return Result{}, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return Result{}, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return Result{}, err
	}
	if err := mw.Close(); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, whisperURL, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.hc.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("whisper http %d: %s", resp.StatusCode, string(b))
	}

	var wr whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Result{}, err
	}
	return Result{
		Text:     strings.TrimSpace(wr.Text),
		Language: codeForLanguageName(wr.Language),
	}, nil
}
