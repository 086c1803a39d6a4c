package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"marketref/internal/manager"
	"marketref/internal/model"
	"marketref/internal/model/enum"
	"marketref/pkg/exception"
)

// FeedKey identifies one shareable feed. Two acquisitions with an
// identical key return the same feed instance.
type FeedKey struct {
	Provider     string
	InstrumentID uuid.UUID
	Resolution   enum.Resolution
	Interval     int
	From         time.Time
	To           time.Time
	Mode         enum.ToDateMode
	DataType     enum.PriceDataType
}

// Cache is the registry of shared feed instances. Feeds are acquired
// and released only through it.
type Cache struct {
	manager *manager.Manager

	mu    sync.Mutex
	feeds map[FeedKey]*feedEntry
}

type feedEntry struct {
	feed *DataFeed
	refs int
}

func NewCache(m *manager.Manager) *Cache {
	return &Cache{
		manager: m,
		feeds:   make(map[FeedKey]*feedEntry),
	}
}

// GetDataFeed returns the shared feed for the key, constructing and
// loading it on first acquisition. The feed subscribes to price
// changes while at least one holder remains; every holder must Close.
func (c *Cache) GetDataFeed(key FeedKey) (*DataFeed, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	ticker, ok := c.manager.InstrumentTicker(key.InstrumentID)
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "instrument %s", key.InstrumentID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.feeds[key]; ok {
		entry.refs++
		return entry.feed, nil
	}

	f := &DataFeed{
		key:    key,
		ticker: ticker,
		cache:  c,
	}
	// subscribe before the initial load so a write committing in
	// between still triggers a reload
	f.sub = c.manager.SubscribePrice(f)
	if err := f.reload(); err != nil {
		c.manager.UnsubscribePrice(f.sub)
		return nil, err
	}
	c.feeds[key] = &feedEntry{feed: f, refs: 1}
	logs.Infof("feed opened: %s %s", ticker, key.Resolution)
	return f, nil
}

// Level1Window reads a tick window directly into a column block. Tick
// data is windowed, never resampled or cached between calls.
func (c *Cache) Level1Window(provider string, instrumentID uuid.UUID, from, to time.Time, sel enum.PriceDataType) (*Level1Cache, error) {
	ticker, ok := c.manager.InstrumentTicker(instrumentID)
	if !ok {
		return nil, errors.Wrapf(exception.ErrNotFound, "instrument %s", instrumentID)
	}

	ticks, err := c.manager.Store().GetLevel1(provider, ticker, from, to, sel)
	if err != nil {
		return nil, err
	}
	return NewLevel1Cache(ticker, ticks), nil
}

// OpenFeedCount reports the number of live registry entries.
func (c *Cache) OpenFeedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.feeds)
}

func (c *Cache) release(key FeedKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.feeds[key]
	if !ok {
		return errors.Wrap(exception.ErrFeedClosed, "feed already released")
	}
	entry.refs--
	if entry.refs > 0 {
		return nil
	}

	c.manager.UnsubscribePrice(entry.feed.sub)
	entry.feed.markClosed()
	delete(c.feeds, key)
	logs.Infof("feed closed: %s %s", entry.feed.ticker, key.Resolution)
	return nil
}

func validateKey(key FeedKey) error {
	if !key.Resolution.IsAvailable() || key.Resolution == enum.ResolutionLevel1 {
		return errors.Wrapf(exception.ErrInvalidArgument, "feed resolution %s", key.Resolution)
	}
	if key.Interval < 1 {
		return errors.Wrapf(exception.ErrInvalidArgument, "interval %d", key.Interval)
	}
	if !key.Mode.IsAvailable() || !key.DataType.IsAvailable() {
		return errors.Wrap(exception.ErrInvalidArgument, "feed key")
	}
	if key.Mode == enum.ToDatePinned && key.To.Before(key.From) {
		return errors.Wrapf(exception.ErrInvalidArgument, "window %s-%s", key.From, key.To)
	}
	return nil
}

// DataFeed is a shared, cursor-based view over one resampled series.
// It reloads itself from the store whenever a matching price change is
// published, so concurrent and out-of-order ingestion converge to the
// same feed content.
type DataFeed struct {
	key    FeedKey
	ticker string
	cache  *Cache
	sub    manager.SubscriptionID

	mu     sync.RWMutex
	data   *DataCache
	cursor int
	closed bool
}

// Close releases this holder's reference. The underlying feed drops
// its price subscription and leaves the registry when the last holder
// closes.
func (f *DataFeed) Close() error {
	f.mu.RLock()
	closed := f.closed
	f.mu.RUnlock()
	if closed {
		return errors.Wrap(exception.ErrFeedClosed, "close")
	}
	return f.cache.release(f.key)
}

func (f *DataFeed) markClosed() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// Len reports the number of loaded (resampled) bars.
func (f *DataFeed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data.Len()
}

// CurrentBar is the cursor position. Valid lookback indices for Bar
// are [0, CurrentBar].
func (f *DataFeed) CurrentBar() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cursor
}

// Next advances the cursor one bar. It fails on a closed feed and once
// the cursor sits on the last loaded bar.
func (f *DataFeed) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.Wrap(exception.ErrFeedClosed, "next")
	}
	if f.cursor+1 >= f.data.Len() {
		return errors.Wrapf(exception.ErrIndexOutOfRange, "cursor %d of %d", f.cursor, f.data.Len())
	}
	f.cursor++
	return nil
}

// Bar returns the bar i steps behind the cursor; Bar(0) is the bar at
// the cursor.
func (f *DataFeed) Bar(i int) (model.Bar, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return model.Bar{}, errors.Wrap(exception.ErrFeedClosed, "bar")
	}
	if i < 0 || i > f.cursor || f.cursor-i >= f.data.Len() {
		return model.Bar{}, errors.Wrapf(exception.ErrIndexOutOfRange, "index %d with cursor %d of %d", i, f.cursor, f.data.Len())
	}
	return f.data.Bar(f.cursor - i), nil
}

// Bars returns the loaded series in chronological order.
func (f *DataFeed) Bars() []model.Bar {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]model.Bar, 0, f.data.Len())
	for i := 0; i < f.data.Len(); i++ {
		out = append(out, f.data.Bar(i))
	}
	return out
}

// Stream snapshots the loaded series into a DataStream positioned at
// the feed's cursor.
func (f *DataFeed) Stream() *DataStream[model.Bar] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s := NewDataStream(f.streamData())
	s.cursor = f.cursor
	return s
}

func (f *DataFeed) streamData() []model.Bar {
	out := make([]model.Bar, 0, f.data.Len())
	for i := 0; i < f.data.Len(); i++ {
		out = append(out, f.data.Bar(i))
	}
	return out
}

// OnPriceChange reloads the feed when a published change intersects
// its key. Runs synchronously on the writer's thread.
func (f *DataFeed) OnPriceChange(changes []manager.PriceChange) {
	for _, change := range changes {
		if !f.matches(change) {
			continue
		}
		f.mu.RLock()
		closed := f.closed
		f.mu.RUnlock()
		if closed {
			return
		}
		if err := f.reload(); err != nil {
			logs.Warnf("feed reload failed for %s %s: %v", f.ticker, f.key.Resolution, err)
		}
		return
	}
}

func (f *DataFeed) matches(change manager.PriceChange) bool {
	if change.Provider != f.key.Provider || change.InstrumentID != f.key.InstrumentID {
		return false
	}
	if change.Resolution != f.key.Resolution {
		return false
	}
	switch change.DataType {
	case enum.PriceDataActual:
		if !f.key.DataType.IncludesActual() {
			return false
		}
	case enum.PriceDataSynthetic:
		if !f.key.DataType.IncludesSynthetic() {
			return false
		}
	}
	if change.To.Before(f.key.From) {
		return false
	}
	if f.key.Mode == enum.ToDatePinned && change.From.After(f.key.To) {
		return false
	}
	return true
}

// reload pulls the window from the store and resamples it. In Rolling
// mode the upper bound is recomputed as now() on every reload.
func (f *DataFeed) reload() error {
	to := f.key.To
	if f.key.Mode == enum.ToDateRolling {
		to = time.Now().UTC()
	}

	bars, err := f.cache.manager.Store().GetBars(f.key.Provider, f.key.Resolution, f.ticker, f.key.From, to, f.key.DataType)
	if err != nil {
		return err
	}
	resampled := resampleBars(bars, f.key.Resolution, f.key.Interval, f.key.From)

	f.mu.Lock()
	f.data = NewDataCache(f.ticker, resampled)
	if f.cursor >= f.data.Len() && f.data.Len() > 0 {
		f.cursor = f.data.Len() - 1
	}
	if f.data.Len() == 0 {
		f.cursor = 0
	}
	f.mu.Unlock()
	return nil
}

// resampleBars groups a chronological series into buckets of interval
// consecutive bars: Open from the first bar, High/Low as extremes,
// Close from the last, Volume summed. A window starting off an
// interval boundary contributes one short, boundary-aligned leading
// bucket before the regular groups.
func resampleBars(src []model.Bar, res enum.Resolution, interval int, from time.Time) []model.Bar {
	if interval <= 1 || len(src) == 0 {
		return src
	}

	span := res.Duration() * time.Duration(interval)
	out := make([]model.Bar, 0, len(src)/interval+2)
	i := 0

	floor := from.Truncate(span)
	if !floor.Equal(from) {
		boundary := floor.Add(span)
		j := i
		for j < len(src) && src[j].Time.Before(boundary) {
			j++
		}
		if j > i {
			out = append(out, mergeBars(src[i:j], floor))
			i = j
		}
	}

	for i < len(src) {
		j := i + interval
		if j > len(src) {
			j = len(src)
		}
		out = append(out, mergeBars(src[i:j], src[i].Time.Truncate(span)))
		i = j
	}
	return out
}

// mergeBars collapses one bucket. The bucket counts as synthetic when
// any constituent bar is synthetic.
func mergeBars(group []model.Bar, at time.Time) model.Bar {
	merged := model.Bar{
		Ticker: group[0].Ticker,
		Time:   at,
		Open:   group[0].Open,
		High:   group[0].High,
		Low:    group[0].Low,
		Close:  group[len(group)-1].Close,
		Volume: group[0].Volume,
	}
	for _, bar := range group {
		if bar.Synthetic {
			merged.Synthetic = true
		}
	}
	for _, bar := range group[1:] {
		if bar.High.GreaterThan(merged.High) {
			merged.High = bar.High
		}
		if bar.Low.LessThan(merged.Low) {
			merged.Low = bar.Low
		}
		merged.Volume = merged.Volume.Add(bar.Volume)
	}
	return merged
}
