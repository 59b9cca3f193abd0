package post

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/board"
	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

// Params is spec §3's PostParams: threadId empty means "new thread", in
// which case Subject is required.
type Params struct {
	ThreadID string `json:"threadId"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"`
}

// Result is spec §3's PostResult.
type Result struct {
	Success    bool
	ResultType ResultKind
	Message    string
}

// Engine submits posts through client, consulting an optional SambaGate
// before every attempt.
type Engine struct {
	client *httpclient.Client
}

// New creates an Engine backed by client.
func New(client *httpclient.Client) *Engine {
	return &Engine{client: client}
}

const confirmSubmitValue = "書き込む"

// Submit performs spec §4.I's post flow for b: the Samba rate gate (if gate
// is non-nil), the initial POST, and — if the response demands it — the
// confirmation two-step. now is passed in rather than read from the clock so
// callers control the Samba timestamp recorded on success.
func (e *Engine) Submit(ctx context.Context, b board.Board, params Params, gate *SambaGate, now time.Time) (*Result, error) {
	boardKey := b.BbsID
	if gate != nil && !gate.Allow(boardKey, now) {
		return &Result{Success: false, ResultType: ResultSambaBlocked, Message: "post interval not yet elapsed"}, nil
	}

	if b.BoardType == board.TypeMachiBBS {
		return e.submitMachi(ctx, b, params, gate, now)
	}
	return e.submit5chFamily(ctx, b, params, gate, now)
}

func (e *Engine) submit5chFamily(ctx context.Context, b board.Board, params Params, gate *SambaGate, now time.Time) (*Result, error) {
	fields := initialFormFields(b, params, now)
	body, err := encodeForm(fields, b.WriteCharset())
	if err != nil {
		return nil, fmt.Errorf("post: encode form: %w", err)
	}

	resp, err := e.postOnce(ctx, b, params.ThreadID, body)
	if err != nil {
		return nil, err
	}
	result := e.classifyAndGate(string(resp.Body), b, gate, now)
	if result.ResultType != ResultCheck {
		return result, nil
	}

	hidden := ExtractHiddenInputs(string(resp.Body))
	hidden = append(hidden, [2]string{"submit", confirmSubmitValue})
	confirmBody, err := encodeForm(hidden, b.WriteCharset())
	if err != nil {
		return nil, fmt.Errorf("post: encode confirmation form: %w", err)
	}
	resp, err = e.postOnce(ctx, b, params.ThreadID, confirmBody)
	if err != nil {
		return nil, err
	}
	return e.classifyAndGate(string(resp.Body), b, gate, now), nil
}

// submitMachi posts for Machi BBS boards, where success is an HTTP 302 with
// a Location header regardless of body contents.
func (e *Engine) submitMachi(ctx context.Context, b board.Board, params Params, gate *SambaGate, now time.Time) (*Result, error) {
	fields := initialFormFields(b, params, now)
	body, err := encodeForm(fields, b.WriteCharset())
	if err != nil {
		return nil, fmt.Errorf("post: encode form: %w", err)
	}
	resp, err := e.postOnce(ctx, b, params.ThreadID, body)
	if err != nil {
		return nil, err
	}
	if resp.Status == 302 && resp.Headers.Get("location") != "" {
		if gate != nil {
			_ = gate.RecordPost(b.BbsID, now)
		}
		return &Result{Success: true, ResultType: ResultOK}, nil
	}
	return &Result{Success: false, ResultType: ResultError, Message: "machi post did not receive a redirect"}, nil
}

func (e *Engine) classifyAndGate(body string, b board.Board, gate *SambaGate, now time.Time) *Result {
	kind := Classify(body)
	result := &Result{ResultType: kind}
	switch kind {
	case ResultOK:
		result.Success = true
		if gate != nil {
			_ = gate.RecordPost(b.BbsID, now)
		}
	case ResultCheck:
		// caller proceeds to the confirmation step
	default:
		result.Success = false
	}
	return result
}

// postOnce submits body to b's write endpoint. The Referer is the thread's
// read URL for a reply (threadID non-empty) and the board URL for a new
// thread, matching spec §4.I.
func (e *Engine) postOnce(ctx context.Context, b board.Board, threadID, body string) (*httpclient.Response, error) {
	referer := b.URL
	if threadID != "" {
		referer = b.DatURL(threadID)
	}
	return e.client.Fetch(ctx, httpclient.Request{
		URL:    b.WriteURL(),
		Method: httpclient.MethodPost,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Referer":      referer,
		},
		Body:      []byte(body),
		ProxyMode: proxymanager.Write,
	})
}

func initialFormFields(b board.Board, params Params, now time.Time) [][2]string {
	fields := [][2]string{{"bbs", b.BbsID}}
	if params.ThreadID != "" {
		fields = append(fields, [2]string{"key", params.ThreadID})
	} else {
		fields = append(fields, [2]string{"subject", params.Subject})
	}
	fields = append(fields,
		[2]string{"time", strconv.FormatInt(now.Unix(), 10)},
		[2]string{"FROM", params.Name},
		[2]string{"mail", params.Mail},
		[2]string{"MESSAGE", params.Message},
		[2]string{"submit", confirmSubmitValue},
	)
	return fields
}

// encodeForm builds an x-www-form-urlencoded body from ordered fields,
// mirroring internal/auth's helper but kept local since post additionally
// needs to round-trip hidden-field pairs extracted from HTML.
func encodeForm(fields [][2]string, enc codec.Encoding) (string, error) {
	out := ""
	for i, kv := range fields {
		key, err := codec.FormURLEncode(kv[0], enc)
		if err != nil {
			return "", fmt.Errorf("post: encode field name %q: %w", kv[0], err)
		}
		value, err := codec.FormURLEncode(kv[1], enc)
		if err != nil {
			return "", fmt.Errorf("post: encode field value for %q: %w", kv[0], err)
		}
		if i > 0 {
			out += "&"
		}
		out += key + "=" + value
	}
	return out, nil
}
