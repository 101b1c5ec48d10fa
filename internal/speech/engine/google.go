package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-audio/audio"

	"github.com/9mada4/VoiceChatBot/internal/logger"
	"github.com/9mada4/VoiceChatBot/internal/speech/convert"
)

const googleEndpoint = "http://www.google.com/speech-api/v2/recognize"

// Google sends FLAC audio to the chromium speech endpoint. Requires an
// API key, which comes from the .env file.
type Google struct {
	key      string
	locale   string
	endpoint string
	client   *http.Client
	log      *logger.Logger
}

func NewGoogle(key, locale string) *Google {
	return &Google{
		key:      key,
		locale:   locale,
		endpoint: googleEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      logger.NewLogger("google"),
	}
}

type googleAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type googleResult struct {
	Alternative []googleAlternative `json:"alternative"`
	Final       bool                `json:"final"`
}

type googleResponse struct {
	Result []googleResult `json:"result"`
}

func (g *Google) Transcribe(ctx context.Context, clip *audio.IntBuffer) (Result, error) {
	flacData, err := convert.EncodeFLAC(clip)
	if err != nil {
		g.log.Warn("in-memory flac encoding failed: ", err)
		wavData, werr := convert.EncodeWAV(clip)
		if werr != nil {
			return Result{}, werr
		}
		if flacData, err = convert.EncodeFLACExecutable(wavData); err != nil {
			return Result{}, err
		}
	}

	req, err := g.buildRequest(ctx, flacData)
	if err != nil {
		return Result{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sending recognition request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading recognition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("speech endpoint: %s", resp.Status)
	}
	g.log.Info("endpoint answered ", len(body), " bytes")
	return parseGoogleResponse(string(body))
}

func (g *Google) buildRequest(ctx context.Context, flacData []byte) (*http.Request, error) {
	params := url.Values{}
	params.Set("client", "chromium")
	params.Set("lang", g.locale)
	params.Set("key", g.key)
	params.Set("pFilter", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+params.Encode(), bytes.NewReader(flacData))
	if err != nil {
		return nil, fmt.Errorf("building recognition request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/x-flac; rate=16000")
	return req, nil
}

// parseGoogleResponse walks the line-delimited JSON the endpoint emits.
// The first line is usually an empty result list, the real transcription
// follows.
func parseGoogleResponse(text string) (Result, error) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var response googleResponse
		if err := json.Unmarshal([]byte(line), &response); err != nil {
			return Result{}, fmt.Errorf("parsing recognition response: %w", err)
		}
		if len(response.Result) == 0 {
			continue
		}
		return bestHypothesis(response.Result[0].Alternative)
	}
	return Result{}, ErrTranscriptionEmpty
}

func bestHypothesis(alternatives []googleAlternative) (Result, error) {
	if len(alternatives) == 0 {
		return Result{}, ErrTranscriptionEmpty
	}

	best := googleAlternative{Confidence: -1}
	for _, alternative := range alternatives {
		if alternative.Confidence > best.Confidence {
			best = alternative
		}
	}
	if best.Transcript == "" {
		return Result{}, ErrTranscriptionEmpty
	}

	confidence := best.Confidence
	if confidence == 0 {
		// The endpoint omits confidence on single hypotheses.
		confidence = 0.5
	}
	return Result{Text: best.Transcript, Confidence: confidence}, nil
}
