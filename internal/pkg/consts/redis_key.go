package consts

const (
	TokenBlacklistKey   = "token:blacklist:"
	AnalyticsBundleKey  = "analytics:bundle:"
	ContentDirtyKey     = "content:dirty"
)

const (
	InteractionLock = "lock:interaction:"
	ContentJobLock  = "lock:job:content_metric"
)
