package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/roflsunriz/VBBB-sub002/internal/board"
	"github.com/roflsunriz/VBBB-sub002/internal/cache"
	"github.com/roflsunriz/VBBB-sub002/internal/codec"
	"github.com/roflsunriz/VBBB-sub002/internal/cookiejar"
	"github.com/roflsunriz/VBBB-sub002/internal/favorites"
	"github.com/roflsunriz/VBBB-sub002/internal/history"
	"github.com/roflsunriz/VBBB-sub002/internal/httpclient"
	"github.com/roflsunriz/VBBB-sub002/internal/ngfilter"
	"github.com/roflsunriz/VBBB-sub002/internal/parser"
	"github.com/roflsunriz/VBBB-sub002/internal/post"
	"github.com/roflsunriz/VBBB-sub002/internal/proxymanager"
)

const bbsMenuURL = "https://menu.5ch.net/bbsmenu.html"

func (e *Engine) handleFetchMenu(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	resp, err := e.Client.Fetch(ctx, httpclient.Request{URL: bbsMenuURL, Method: httpclient.MethodGet, ProxyMode: proxymanager.Read, AcceptGzip: true})
	if err != nil {
		return nil, fmt.Errorf("engine: fetch bbsmenu: %w", err)
	}
	decoded, err := codec.Decode(resp.Body, codec.ShiftJIS, true)
	if err != nil {
		return nil, fmt.Errorf("engine: decode bbsmenu: %w", err)
	}
	categories, err := parser.ParseBBSMenu(decoded)
	if err != nil {
		return nil, fmt.Errorf("engine: parse bbsmenu: %w", err)
	}
	menu := board.BuildMenuFromParsed(categories)
	for _, cat := range menu.Categories {
		for _, b := range cat.Boards {
			e.RegisterBoard(b)
		}
	}
	e.menu = menu
	return e.menu, nil
}

type fetchSubjectRequest struct {
	BoardURL string `json:"boardUrl"`
}

func (e *Engine) handleFetchSubject(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req fetchSubjectRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fetch-subject request: %w", err)
	}
	b, ok := e.boards[req.BoardURL]
	if !ok {
		return nil, fmt.Errorf("engine: unregistered board %q", req.BoardURL)
	}
	resp, err := e.Client.Fetch(ctx, httpclient.Request{URL: b.SubjectURL(), Method: httpclient.MethodGet, ProxyMode: proxymanager.Read, AcceptGzip: true})
	if err != nil {
		return nil, fmt.Errorf("engine: fetch subject.txt: %w", err)
	}
	decoded, err := codec.Decode(resp.Body, b.ReadCharset(), true)
	if err != nil {
		return nil, fmt.Errorf("engine: decode subject.txt: %w", err)
	}
	return struct {
		Threads []parser.SubjectRecord `json:"threads"`
	}{Threads: parser.ParseSubject(decoded)}, nil
}

type fetchDatRequest struct {
	BoardURL string `json:"boardUrl"`
	ThreadID string `json:"threadId"`
}

func (e *Engine) handleFetchDat(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req fetchDatRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fetch-dat request: %w", err)
	}
	b, ok := e.boards[req.BoardURL]
	if !ok {
		return nil, fmt.Errorf("engine: unregistered board %q", req.BoardURL)
	}

	prevSize, prevLastMod, hasPrevLastMod := e.lookupPrevDatState(req.BoardURL, req.ThreadID)

	rules, err := cache.LoadDatReplaceRules(filepath.Join(e.Config.DataDir, "dat-replace.ini"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("engine: load dat-replace.ini: %w", err)
	}

	result, err := e.Cache.FetchDat(ctx, b, req.ThreadID, prevSize, prevLastMod, hasPrevLastMod, rules)
	if err != nil {
		return nil, fmt.Errorf("engine: fetch dat: %w", err)
	}
	return result, nil
}

type fetchOysterRequest struct {
	BoardURL string `json:"boardUrl"`
	ThreadID string `json:"threadId"`
}

// handleFetchOyster serves bbs:fetch-oyster: 5ch's paid past-log endpoint,
// which requires a live UPLIFT session (spec's "Oyster" glossary entry).
func (e *Engine) handleFetchOyster(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req fetchOysterRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fetch-oyster request: %w", err)
	}
	b, ok := e.boards[req.BoardURL]
	if !ok {
		return nil, fmt.Errorf("engine: unregistered board %q", req.BoardURL)
	}
	sid := e.Auth.UpliftSessionID()
	if sid == "" {
		return nil, fmt.Errorf("engine: fetch-oyster requires an active UPLIFT session")
	}
	result, err := e.Cache.FetchOyster(ctx, b, req.ThreadID, sid)
	if err != nil {
		return nil, fmt.Errorf("engine: fetch oyster dat: %w", err)
	}
	return result, nil
}

func (e *Engine) handlePost(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		BoardURL string `json:"boardUrl"`
		post.Params
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode post request: %w", err)
	}
	b, ok := e.boards[req.BoardURL]
	if !ok {
		return nil, fmt.Errorf("engine: unregistered board %q", req.BoardURL)
	}

	gatePath := filepath.Join(cache.BoardDir(e.Config.DataDir, req.BoardURL), "SambaTime.ini")
	gate, err := post.LoadSambaGate(gatePath)
	if err != nil {
		return nil, fmt.Errorf("engine: load samba gate: %w", err)
	}

	result, err := e.Post.Submit(ctx, b, req.Params, gate, time.Now())
	if err != nil {
		return nil, fmt.Errorf("engine: submit post: %w", err)
	}
	if result.Success {
		e.PostHistory.Add(history.PostEntry{
			BoardURL: b.URL,
			ThreadID: req.Params.ThreadID,
			Name:     req.Params.Name,
			Mail:     req.Params.Mail,
			Message:  req.Params.Message,
		})
	}
	return result, nil
}

type getThreadIndexRequest struct {
	BoardURL string `json:"boardUrl"`
}

func (e *Engine) handleGetThreadIndex(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req getThreadIndexRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode get-thread-index request: %w", err)
	}
	idxPath := filepath.Join(cache.BoardDir(e.Config.DataDir, req.BoardURL), "Folder.idx")
	idx, err := cache.LoadFolderIdx(idxPath)
	if err != nil {
		return nil, fmt.Errorf("engine: load thread index: %w", err)
	}
	return idx, nil
}

// threadIdxPartial carries only the view-state fields a UI mutates locally
// (scroll position, read markers, age/sage); server-derived fields like
// Count and Size are never accepted from this channel. A nil pointer means
// "leave this field unchanged".
type threadIdxPartial struct {
	Kokomade        *int `json:"kokomade,omitempty"`
	NewReceive      *int `json:"newReceive,omitempty"`
	UnRead          *int `json:"unRead,omitempty"`
	ScrollTop       *int `json:"scrollTop,omitempty"`
	ScrollResNumber *int `json:"scrollResNumber,omitempty"`
	ScrollResOffset *int `json:"scrollResOffset,omitempty"`
	AgeSage         *int `json:"ageSage,omitempty"`
}

func (p threadIdxPartial) applyTo(row *cache.ThreadIndex) {
	if p.Kokomade != nil {
		row.Kokomade = *p.Kokomade
	}
	if p.NewReceive != nil {
		row.NewReceive = *p.NewReceive
	}
	if p.UnRead != nil {
		row.UnRead = *p.UnRead
	}
	if p.ScrollTop != nil {
		row.ScrollTop = *p.ScrollTop
	}
	if p.ScrollResNumber != nil {
		row.ScrollResNumber = *p.ScrollResNumber
	}
	if p.ScrollResOffset != nil {
		row.ScrollResOffset = *p.ScrollResOffset
	}
	if p.AgeSage != nil {
		row.AgeSage = *p.AgeSage
	}
}

func (e *Engine) handleUpdateThreadIdx(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		BoardURL string           `json:"boardUrl"`
		ThreadID string           `json:"threadId"`
		Partial  threadIdxPartial `json:"partial"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode update-thread-index request: %w", err)
	}

	idxPath := filepath.Join(cache.BoardDir(e.Config.DataDir, req.BoardURL), "Folder.idx")
	rows, err := cache.LoadFolderIdx(idxPath)
	if err != nil {
		return nil, fmt.Errorf("engine: load thread index: %w", err)
	}

	fileName := req.ThreadID + ".dat"
	found := false
	for i := range rows {
		if rows[i].FileName == fileName {
			req.Partial.applyTo(&rows[i])
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("engine: thread %q not found in board %q index", req.ThreadID, req.BoardURL)
	}
	if err := cache.SaveFolderIdx(idxPath, rows); err != nil {
		return nil, fmt.Errorf("engine: save thread index: %w", err)
	}
	return nil, nil
}

func (e *Engine) handleCookieList(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.Jar.List(), nil
}

func (e *Engine) handleCookieSet(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Name       string `json:"name"`
		Value      string `json:"value"`
		Domain     string `json:"domain"`
		Path       string `json:"path"`
		Secure     bool   `json:"secure"`
		ExpiresISO string `json:"expires,omitempty"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode cookie:set request: %w", err)
	}
	c := cookiejar.StoredCookie{
		Name: req.Name, Value: req.Value, Domain: req.Domain, Path: req.Path, Secure: req.Secure,
	}
	if req.ExpiresISO != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresISO)
		if err != nil {
			return nil, fmt.Errorf("engine: parse cookie expiry: %w", err)
		}
		c.HasExpires = true
		c.Expires = t
	}
	e.Jar.SetCookie(c)
	return nil, nil
}

func (e *Engine) handleCookieRemove(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Name, Domain, Path string
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode cookie:remove request: %w", err)
	}
	e.Jar.RemoveCookie(req.Name, req.Domain, req.Path)
	return nil, nil
}

func (e *Engine) handleCookieClear(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	e.Jar.Clear()
	return nil, nil
}

func (e *Engine) handleAuthState(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return struct {
		Uplift  interface{} `json:"uplift"`
		Be      interface{} `json:"be"`
		Donguri interface{} `json:"donguri"`
	}{
		Uplift:  e.Auth.UpliftSnapshot(),
		Be:      e.Auth.BeSnapshot(),
		Donguri: e.Auth.DonguriSnapshot(),
	}, nil
}

func (e *Engine) handleAuthUpliftLogin(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		User         string `json:"user"`
		Password     string `json:"password"`
		UserAgentTag string `json:"userAgentTag"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode auth:uplift-login request: %w", err)
	}
	if err := e.Auth.UpliftLogin(ctx, req.User, req.Password, req.UserAgentTag); err != nil {
		return nil, err
	}
	return e.Auth.UpliftSnapshot(), nil
}

func (e *Engine) handleAuthUpliftLogout(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	e.Auth.UpliftLogout()
	return e.Auth.UpliftSnapshot(), nil
}

func (e *Engine) handleAuthBeLogin(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Mail     string `json:"mail"`
		Password string `json:"password"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode auth:be-login request: %w", err)
	}
	if err := e.Auth.BeLogin(ctx, req.Mail, req.Password); err != nil {
		return nil, err
	}
	return e.Auth.BeSnapshot(), nil
}

func (e *Engine) handleAuthBeLogout(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	e.Auth.BeLogout()
	return e.Auth.BeSnapshot(), nil
}

func (e *Engine) handleAuthDonguriLogin(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Mail     string `json:"mail"`
		Password string `json:"password"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode auth:donguri-login request: %w", err)
	}
	if err := e.Auth.DonguriLogin(ctx, req.Mail, req.Password); err != nil {
		return nil, err
	}
	return e.Auth.DonguriSnapshot(), nil
}

type roundConfigureRequest struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"intervalMinutes"`
}

func (e *Engine) handleRoundConfigure(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req roundConfigureRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode round:configure request: %w", err)
	}
	e.Round.Configure(req.Enabled, req.IntervalMinutes)
	return nil, nil
}

func (e *Engine) handleRoundExecute(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.Round.Execute(ctx), nil
}

func (e *Engine) handleRoundState(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	enabled, intervalMinutes := e.Round.State()
	return struct {
		Enabled         bool `json:"enabled"`
		IntervalMinutes int  `json:"intervalMinutes"`
	}{Enabled: enabled, IntervalMinutes: intervalMinutes}, nil
}

func (e *Engine) handleProxyGet(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return struct {
		Read  proxymanager.Endpoint `json:"read"`
		Write proxymanager.Endpoint `json:"write"`
	}{
		Read:  e.ProxyManager.GetEndpoint(proxymanager.Read),
		Write: e.ProxyManager.GetEndpoint(proxymanager.Write),
	}, nil
}

func (e *Engine) handleProxySet(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Mode     string                `json:"mode"`
		Endpoint proxymanager.Endpoint `json:"endpoint"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode proxy:set request: %w", err)
	}
	mode := proxymanager.Read
	if req.Mode == "write" {
		mode = proxymanager.Write
	}
	e.ProxyManager.SetEndpoint(mode, req.Endpoint)
	e.Client.RefreshProxyConfig()
	if err := e.ProxyManager.Save(e.Config.ProxyFile); err != nil {
		return nil, fmt.Errorf("engine: save proxy config: %w", err)
	}
	return nil, nil
}

func (e *Engine) handleNGList(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.NG.Rules(), nil
}

func (e *Engine) handleNGAdd(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Target   int      `json:"target"`
		AbonType int      `json:"abonType"`
		Match    int      `json:"match"`
		Tokens   []string `json:"tokens"`
		BoardID  string   `json:"boardId,omitempty"`
		ThreadID string   `json:"threadId,omitempty"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode ng:add request: %w", err)
	}
	rule := ngfilter.NewRule(
		ngfilter.Target(req.Target), ngfilter.AbonType(req.AbonType), ngfilter.MatchMode(req.Match),
		req.Tokens, req.BoardID, req.ThreadID,
	)
	e.NG.Add(rule)
	return rule, nil
}

func (e *Engine) handleNGRemove(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode ng:remove request: %w", err)
	}
	return e.NG.Remove(req.ID), nil
}

func (e *Engine) handleFavList(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.Favorites.Roots, nil
}

type favAddRequest struct {
	Kind      string `json:"kind"` // "folder", "item", or "separator"
	Title     string `json:"title,omitempty"`
	ItemType  string `json:"itemType,omitempty"`
	URL       string `json:"url,omitempty"`
	BoardType string `json:"boardType,omitempty"`
}

func (e *Engine) handleFavAdd(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req favAddRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fav:add request: %w", err)
	}

	var node *favorites.Node
	switch req.Kind {
	case "folder":
		node = favorites.NewFolder(req.Title)
	case "separator":
		node = favorites.NewSeparator()
	default:
		node = favorites.NewItem(favorites.ItemType(req.ItemType), req.URL, req.Title, req.BoardType)
	}
	e.Favorites.Add(node)
	if err := e.Favorites.Save(); err != nil {
		return nil, fmt.Errorf("engine: save favorites: %w", err)
	}
	return node, nil
}

func (e *Engine) handleFavRemove(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fav:remove request: %w", err)
	}
	removed := e.Favorites.Remove(req.ID)
	if removed {
		if err := e.Favorites.Save(); err != nil {
			return nil, fmt.Errorf("engine: save favorites: %w", err)
		}
	}
	return removed, nil
}

func (e *Engine) handleFavMove(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		DragID   string `json:"dragId"`
		DropID   string `json:"dropId"`
		Position string `json:"position"` // "before", "after", or "inside"
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode fav:move request: %w", err)
	}

	position := favorites.Position(req.Position)
	switch position {
	case favorites.PositionBefore, favorites.PositionAfter, favorites.PositionInside:
	default:
		return nil, fmt.Errorf("engine: unknown fav:move position %q", req.Position)
	}
	if err := e.Favorites.Reorder(req.DragID, req.DropID, position); err != nil {
		return nil, err
	}
	if err := e.Favorites.Save(); err != nil {
		return nil, fmt.Errorf("engine: save favorites: %w", err)
	}
	return nil, nil
}

func (e *Engine) handleHistoryListBrowsing(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.Browsing.Entries(), nil
}

func (e *Engine) handleHistoryListPosts(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.PostHistory.Entries(), nil
}

type addBrowsingRequest struct {
	BoardURL string `json:"boardUrl"`
	ThreadID string `json:"threadId"`
	Title    string `json:"title"`
}

func (e *Engine) handleHistoryAddBrowsing(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req addBrowsingRequest
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode history:add-browsing request: %w", err)
	}
	e.Browsing.Add(req.BoardURL, req.ThreadID, req.Title)
	return nil, nil
}

func (e *Engine) handleDiagAddLog(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var req struct {
		Tag     string `json:"tag"`
		Message string `json:"message"`
	}
	if err := decodeRequest(payload, &req); err != nil {
		return nil, fmt.Errorf("engine: decode diag:add-log request: %w", err)
	}
	e.Logger.Info(req.Tag, req.Message)
	return nil, nil
}

func (e *Engine) handleDiagGetLogs(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return e.Logger.RecentLogs(), nil
}

func (e *Engine) handleDiagClearLogs(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	e.Logger.ClearLogs()
	return nil, nil
}

