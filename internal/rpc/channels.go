package rpc

// Channel names from spec §6's RPC surface table.
const (
	ChannelBBSFetchMenu        = "bbs:fetch-menu"
	ChannelBBSFetchSubject     = "bbs:fetch-subject"
	ChannelBBSFetchDat         = "bbs:fetch-dat"
	ChannelBBSFetchOyster      = "bbs:fetch-oyster"
	ChannelBBSPost             = "bbs:post"
	ChannelBBSGetThreadIndex   = "bbs:get-thread-index"
	ChannelBBSUpdateThreadIdx  = "bbs:update-thread-index"

	ChannelCookieList   = "cookie:list"
	ChannelCookieSet    = "cookie:set"
	ChannelCookieRemove = "cookie:remove"
	ChannelCookieClear  = "cookie:clear"

	ChannelAuthUpliftLogin  = "auth:uplift-login"
	ChannelAuthUpliftLogout = "auth:uplift-logout"
	ChannelAuthBeLogin      = "auth:be-login"
	ChannelAuthBeLogout     = "auth:be-logout"
	ChannelAuthDonguriLogin = "auth:donguri-login"
	ChannelAuthState        = "auth:state"

	ChannelRoundConfigure = "round:configure"
	ChannelRoundExecute   = "round:execute"
	ChannelRoundState     = "round:state"

	ChannelProxyGet = "proxy:get"
	ChannelProxySet = "proxy:set"

	ChannelNGList   = "ng:list"
	ChannelNGAdd    = "ng:add"
	ChannelNGRemove = "ng:remove"

	ChannelFavList   = "fav:list"
	ChannelFavAdd    = "fav:add"
	ChannelFavRemove = "fav:remove"
	ChannelFavMove   = "fav:move"

	ChannelHistoryListBrowsing = "history:list-browsing"
	ChannelHistoryListPosts    = "history:list-posts"
	ChannelHistoryAddBrowsing  = "history:add-browsing"

	ChannelSearchLocal    = "search:local"
	ChannelSearchLocalAll = "search:local-all"

	ChannelImageSave     = "image:save"
	ChannelImageSaveBulk = "image:save-bulk"

	ChannelDiagAddLog    = "diag:add-log"
	ChannelDiagGetLogs   = "diag:get-logs"
	ChannelDiagClearLogs = "diag:clear-logs"
)
