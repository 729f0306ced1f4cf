package domain

// HellEvent is an alert relayed from the external event scraper. The text is
// delivered as-is; parsing happens upstream.
type HellEvent struct {
	Boss           string `json:"boss"`
	Text           string `json:"text"`
	IsWatcherChaos bool   `json:"is_watcher_chaos"`
}
