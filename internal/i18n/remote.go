package i18n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Source supplies translated messages for locales missing from the bundle.
type Source interface {
	Translate(ctx context.Context, locale string, base map[string]string) (map[string]string, error)
}

// RemoteSource asks the labels service to translate the base catalog. The
// service speaks the chat protocol: {"agent","input"} in, {"agent","output"}
// out, where output carries a JSON object of translated messages.
type RemoteSource struct {
	client  *http.Client
	baseURL string
}

func NewRemoteSource(httpClient *http.Client, baseURL string) *RemoteSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &RemoteSource{client: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (rs *RemoteSource) Translate(ctx context.Context, locale string, base map[string]string) (map[string]string, error) {
	src, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	instr := fmt.Sprintf(`You translate resume UI labels to %s.

RULES:
1. Return ONLY valid JSON (no markdown, no code blocks, no explanation)
2. Translate VALUES to %s ONLY, do NOT change the KEY names
3. Keep every %%s placeholder exactly once in the same value
4. Include ALL keys of the input

INPUT:
%s`, locale, locale, src)

	body, _ := json.Marshal(map[string]interface{}{"agent": "auto", "input": instr})

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		out, err := rs.post(ctx, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < 2 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<attempt) * 500 * time.Millisecond):
			}
		}
	}
	return nil, lastErr
}

func (rs *RemoteSource) post(ctx context.Context, body []byte) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rs.baseURL+"/v1/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("labels service returned non-200 status: %d", resp.StatusCode)
	}

	var chatResp struct {
		Agent  string `json:"agent"`
		Output string `json:"output"`
	}
	if err := json.Unmarshal(rb, &chatResp); err != nil {
		return nil, err
	}
	return extractJSONObject(chatResp.Output)
}

// extractJSONObject decodes s, or the outermost {...} inside it when the
// service wrapped the object in prose or a code fence.
func extractJSONObject(s string) (map[string]string, error) {
	var out map[string]string
	err := json.Unmarshal([]byte(s), &out)
	if err == nil {
		return out, nil
	}
	start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(s[start:end+1]), &out); err2 == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("labels service returned non-json content: %w", err)
}

// Resolve returns labels for requested. Locales the bundle only matches by
// fallback are translated through src once and cached in the bundle; on any
// failure the base locale is used.
func (b *Bundle) Resolve(ctx context.Context, requested string, src Source) *Labels {
	locale, exact := b.Match(requested)
	if exact || src == nil || requested == "" {
		return b.Labels(locale)
	}
	base := b.Labels(BaseLocale)
	msgs, err := src.Translate(ctx, requested, base.Messages())
	if err != nil {
		slog.Warn("i18n: remote labels failed, using base locale", "locale", requested, "error", err)
		return base
	}
	if err := b.Add(requested, msgs); err != nil {
		slog.Warn("i18n: remote labels rejected", "locale", requested, "error", err)
		return base
	}
	slog.Info("i18n: remote labels cached", "locale", requested, "keys", len(msgs))
	return b.Labels(requested)
}
