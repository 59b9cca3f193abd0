// Package engine wires every backend component into a single Engine and
// registers spec §6's RPC channel table against it, the way main.go wires
// the teacher's session manager, worker pool, and scheduler together — this
// is the only package that constructs concrete instances of every other
// internal package.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/roflsunriz/VBBB-sub002/config"
	"github.com/roflsunriz/VBBB-sub002/internal/auth"
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
	"github.com/roflsunriz/VBBB-sub002/internal/round"
	"github.com/roflsunriz/VBBB-sub002/internal/rpc"
	"github.com/roflsunriz/VBBB-sub002/internal/util"
)

// Engine bundles every stateful component the RPC surface dispatches
// against. Fields are exported so main.go can reach into it for
// startup/shutdown hooks (persisting the jar, proxy config, and favorites
// on exit) without the RPC layer needing a parallel accessor for every field.
type Engine struct {
	Config *config.Config
	Logger *util.Logger

	Client       *httpclient.Client
	Jar          *cookiejar.Jar
	ProxyManager *proxymanager.Manager
	Auth         *auth.Manager
	Cache        *cache.Store
	Post         *post.Engine
	NG           *ngfilter.Engine
	Favorites    *favorites.Tree
	Browsing     *history.Browsing
	PostHistory  *history.Post
	Round        *round.Scheduler

	menu   board.BBSMenu
	boards map[string]board.Board // keyed by Board.URL
}

// New constructs every component from cfg and wires a Round scheduler's
// Fetcher against the Cache/board registry. It does not perform any I/O
// (file loads happen via the Load* methods below) so construction cannot
// fail.
func New(cfg *config.Config) *Engine {
	logger := util.New(util.LevelInfo)
	jar := cookiejar.New()
	pm := proxymanager.New()
	client := httpclient.New(jar, pm)
	client.SetBrowserParity(cfg.BrowserParity)
	retryPolicy := httpclient.DefaultRetryPolicy()
	retryPolicy.MaxRetries = cfg.MaxRetries
	client.SetRetryPolicy(retryPolicy)

	e := &Engine{
		Config:       cfg,
		Logger:       logger,
		Client:       client,
		Jar:          jar,
		ProxyManager: pm,
		Auth:         auth.New(client, jar),
		Cache:        cache.NewStore(cfg.DataDir, client),
		Post:         post.New(client),
		NG:           ngfilter.New(nil),
		Favorites:    favorites.New(filepath.Join(cfg.DataDir, "favorites.json")),
		Browsing:     history.NewBrowsing(cfg.BrowsingHistoryCap),
		PostHistory:  history.NewPost(cfg.PostHistoryCap),
		boards:       make(map[string]board.Board),
	}
	e.Round = round.New(roundFetcher{e}, e.registeredBoardURLs, e.registeredThreadRefs, nil, logger)
	e.Round.Configure(cfg.RoundEnabled, cfg.RoundIntervalMinutes)
	return e
}

// LoadPersisted reads every on-disk persisted file named in spec §6 that
// has a corresponding component. A missing file does not fail startup: a
// missing cookies.txt or proxy file is skipped, and favorites.Load treats a
// missing favorites.json as an empty tree.
func (e *Engine) LoadPersisted() error {
	if err := e.Jar.Load(filepath.Join(e.Config.DataDir, "cookies.txt")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("engine: load cookies: %w", err)
	}
	if e.Config.ProxyFile != "" {
		if err := e.ProxyManager.Load(e.Config.ProxyFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("engine: load proxy config: %w", err)
		}
	}
	favTree, err := favorites.Load(filepath.Join(e.Config.DataDir, "favorites.json"))
	if err != nil {
		return fmt.Errorf("engine: load favorites: %w", err)
	}
	e.Favorites = favTree
	return nil
}

// RegisterBoard adds b to the in-memory board registry, keyed by its URL,
// so the round scheduler and bbs:fetch-* handlers can resolve it.
func (e *Engine) RegisterBoard(b board.Board) {
	e.boards[b.URL] = b
}

func (e *Engine) registeredBoardURLs() []string {
	out := make([]string, 0, len(e.boards))
	for url := range e.boards {
		out = append(out, url)
	}
	return out
}

func (e *Engine) registeredThreadRefs() []round.ThreadRef {
	// Thread registration rides on Folder.idx: every board with a cached
	// index has its known threads refreshed each round.
	var refs []round.ThreadRef
	for url := range e.boards {
		idx, err := cache.LoadFolderIdx(filepath.Join(cache.BoardDir(e.Config.DataDir, url), "Folder.idx"))
		if err != nil {
			continue
		}
		for _, row := range idx {
			refs = append(refs, round.ThreadRef{BoardURL: url, ThreadID: strings.TrimSuffix(row.FileName, ".dat")})
		}
	}
	return refs
}

// roundFetcher adapts Engine's board/cache machinery to round.Fetcher.
type roundFetcher struct{ e *Engine }

func (f roundFetcher) FetchBoard(ctx context.Context, boardURL string) (bool, error) {
	b, ok := f.e.boards[boardURL]
	if !ok {
		return false, fmt.Errorf("engine: unregistered board %q", boardURL)
	}
	resp, err := f.e.Client.Fetch(ctx, httpclient.Request{URL: b.SubjectURL(), Method: httpclient.MethodGet, ProxyMode: proxymanager.Read, AcceptGzip: true})
	if err != nil {
		return false, err
	}
	if resp.Status != 200 {
		return false, nil
	}
	decoded, err := codec.Decode(resp.Body, b.ReadCharset(), true)
	if err != nil {
		return false, err
	}
	return len(parser.ParseSubject(decoded)) > 0, nil
}

func (f roundFetcher) FetchThread(ctx context.Context, ref round.ThreadRef) (bool, error) {
	b, ok := f.e.boards[ref.BoardURL]
	if !ok {
		return false, fmt.Errorf("engine: unregistered board %q", ref.BoardURL)
	}
	prevSize, prevLastMod, hasPrevLastMod := f.e.lookupPrevDatState(ref.BoardURL, ref.ThreadID)
	result, err := f.e.Cache.FetchDat(ctx, b, ref.ThreadID, prevSize, prevLastMod, hasPrevLastMod, nil)
	if err != nil {
		return false, err
	}
	return result.Outcome == cache.OutcomeFullReplace || result.Outcome == cache.OutcomeAppended, nil
}

// lookupPrevDatState reads boardURL's Folder.idx for threadID's last-known
// size and Last-Modified, the state a differential FetchDat needs to decide
// between a ranged GET and a full replace. A missing row or index reports no
// previous state, which FetchDat treats as a first fetch.
func (e *Engine) lookupPrevDatState(boardURL, threadID string) (size int64, lastModified string, hasLastModified bool) {
	idxPath := filepath.Join(cache.BoardDir(e.Config.DataDir, boardURL), "Folder.idx")
	idx, err := cache.LoadFolderIdx(idxPath)
	if err != nil {
		return 0, "", false
	}
	fileName := threadID + ".dat"
	for _, row := range idx {
		if row.FileName == fileName {
			if row.HasLastModified {
				return row.Size, row.LastModified.UTC().Format(time.RFC3339), true
			}
			return row.Size, "", false
		}
	}
	return 0, "", false
}

// RegisterHandlers binds every channel in spec §6's table to e's live
// state, except search:local/search:local-all and image:save/image:save-bulk:
// local full-text search needs a DAT content index this engine does not yet
// build, and image saving has no UI-side download target to write to. Both
// are left unregistered rather than stubbed.
func (e *Engine) RegisterHandlers(reg *rpc.Registry) {
	reg.Register(rpc.ChannelBBSFetchMenu, e.handleFetchMenu)
	reg.Register(rpc.ChannelBBSFetchSubject, e.handleFetchSubject)
	reg.Register(rpc.ChannelBBSFetchDat, e.handleFetchDat)
	reg.Register(rpc.ChannelBBSFetchOyster, e.handleFetchOyster)
	reg.Register(rpc.ChannelBBSPost, e.handlePost)
	reg.Register(rpc.ChannelBBSGetThreadIndex, e.handleGetThreadIndex)
	reg.Register(rpc.ChannelBBSUpdateThreadIdx, e.handleUpdateThreadIdx)

	reg.Register(rpc.ChannelCookieList, e.handleCookieList)
	reg.Register(rpc.ChannelCookieSet, e.handleCookieSet)
	reg.Register(rpc.ChannelCookieRemove, e.handleCookieRemove)
	reg.Register(rpc.ChannelCookieClear, e.handleCookieClear)

	reg.Register(rpc.ChannelAuthUpliftLogin, e.handleAuthUpliftLogin)
	reg.Register(rpc.ChannelAuthUpliftLogout, e.handleAuthUpliftLogout)
	reg.Register(rpc.ChannelAuthBeLogin, e.handleAuthBeLogin)
	reg.Register(rpc.ChannelAuthBeLogout, e.handleAuthBeLogout)
	reg.Register(rpc.ChannelAuthDonguriLogin, e.handleAuthDonguriLogin)
	reg.Register(rpc.ChannelAuthState, e.handleAuthState)

	reg.Register(rpc.ChannelRoundConfigure, e.handleRoundConfigure)
	reg.Register(rpc.ChannelRoundExecute, e.handleRoundExecute)
	reg.Register(rpc.ChannelRoundState, e.handleRoundState)

	reg.Register(rpc.ChannelProxyGet, e.handleProxyGet)
	reg.Register(rpc.ChannelProxySet, e.handleProxySet)

	reg.Register(rpc.ChannelNGList, e.handleNGList)
	reg.Register(rpc.ChannelNGAdd, e.handleNGAdd)
	reg.Register(rpc.ChannelNGRemove, e.handleNGRemove)

	reg.Register(rpc.ChannelFavList, e.handleFavList)
	reg.Register(rpc.ChannelFavAdd, e.handleFavAdd)
	reg.Register(rpc.ChannelFavRemove, e.handleFavRemove)
	reg.Register(rpc.ChannelFavMove, e.handleFavMove)

	reg.Register(rpc.ChannelHistoryListBrowsing, e.handleHistoryListBrowsing)
	reg.Register(rpc.ChannelHistoryListPosts, e.handleHistoryListPosts)
	reg.Register(rpc.ChannelHistoryAddBrowsing, e.handleHistoryAddBrowsing)

	reg.Register(rpc.ChannelDiagAddLog, e.handleDiagAddLog)
	reg.Register(rpc.ChannelDiagGetLogs, e.handleDiagGetLogs)
	reg.Register(rpc.ChannelDiagClearLogs, e.handleDiagClearLogs)
}

func decodeRequest(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, v)
}
