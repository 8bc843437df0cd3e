// Package syncer держит локальную копию блоков и сохраняет правки на сервер
// с задержкой (debounce) через одну последовательную очередь.
package syncer

import (
	"Inbox/internal/cli/api"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status — состояние сохранения блока.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSaving  Status = "saving"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
)

// PlaceholderPrefix — префикс id блока, который ещё не создан на сервере.
const PlaceholderPrefix = "local-"

// ErrUnsaved — после Flush остались несохранённые правки.
var ErrUnsaved = errors.New("unsaved changes")

// API — то, что контроллеру нужно от сервера.
type API interface {
	CreateBlock(ctx context.Context, content string) (*api.Block, error)
	UpdateBlock(ctx context.Context, id, content string) (*api.Block, error)
}

// BlockState — снимок блока для отображения.
type BlockState struct {
	ID       string
	Content  string
	Position int64
	Status   Status
	Err      error
}

// IsPlaceholder — блок создан локально и ждёт ответа сервера.
func (s BlockState) IsPlaceholder() bool { return IsPlaceholder(s.ID) }

func IsPlaceholder(id string) bool { return strings.HasPrefix(id, PlaceholderPrefix) }

// Options — настройки контроллера; нулевые значения заменяются значениями по умолчанию.
type Options struct {
	Debounce     time.Duration
	RetryBackoff time.Duration
	SyncedClear  time.Duration
	// OnChange вызывается после каждой смены статуса, вне блокировок и из разных горутин.
	OnChange func(BlockState)
	Logger   *zap.SugaredLogger
}

const (
	DefaultDebounce     = 600 * time.Millisecond
	DefaultRetryBackoff = 2 * time.Second
	DefaultSyncedClear  = 1500 * time.Millisecond
)

type entry struct {
	state BlockState
	// rev растёт с каждой локальной правкой; сохранение засчитывается, только если rev не изменился
	rev   uint64
	dirty bool

	debounce *time.Timer
	retry    *time.Timer
	clear    *time.Timer
	// gen отсекает устаревшие таймеры сброса статуса synced,
	// debounceGen и retryGen — сработавшие, но уже заменённые таймеры сохранения
	gen         uint64
	debounceGen uint64
	retryGen    uint64
}

// Controller — оптимистичное локальное состояние плюс очередь сохранения.
type Controller struct {
	api  API
	opts Options
	log  *zap.SugaredLogger

	mu      sync.Mutex
	entries map[string]*entry
	order   []string
	aliases map[string]string // placeholder -> серверный id

	queue    []string
	queued   map[string]bool
	inflight string

	idle       chan struct{} // закрыт, когда очередь пуста и ничего не отправляется
	idleClosed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New запускает контроллер с одним рабочим.
func New(a API, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = DefaultRetryBackoff
	}
	if opts.SyncedClear <= 0 {
		opts.SyncedClear = DefaultSyncedClear
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:     a,
		opts:    opts,
		log:     log,
		entries: make(map[string]*entry),
		aliases: make(map[string]string),
		queued:  make(map[string]bool),
		idle:    make(chan struct{}),
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	close(c.idle)
	c.idleClosed = true
	go c.worker()
	return c
}

// Load подставляет блоки с сервера. Блоки с несохранёнными правками сохраняют локальное содержимое.
func (c *Controller) Load(blocks []api.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	order := make([]string, 0, len(blocks))
	seen := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		order = append(order, b.ID)
		seen[b.ID] = true
		if e, ok := c.entries[b.ID]; ok {
			e.state.Position = b.Position
			if !e.dirty {
				e.state.Content = b.Content
			}
			continue
		}
		c.entries[b.ID] = &entry{state: BlockState{ID: b.ID, Content: b.Content, Position: b.Position, Status: StatusIdle}}
	}
	for _, id := range c.order {
		if seen[id] {
			continue
		}
		if e := c.entries[id]; e != nil && (e.dirty || IsPlaceholder(id)) {
			order = append(order, id)
			continue
		}
		delete(c.entries, id)
	}
	c.order = order
}

// Edit меняет содержимое локально сразу и откладывает сохранение на Debounce.
// Новая правка до срабатывания таймера заменяет предыдущую.
func (c *Controller) Edit(id, content string) error {
	c.mu.Lock()
	id = c.resolveLocked(id)
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown block %q", id)
	}
	e.state.Content = content
	e.rev++
	e.dirty = true
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.debounceGen++
	gen := e.debounceGen
	e.debounce = time.AfterFunc(c.opts.Debounce, func() { c.fireDebounce(id, gen) })
	st := c.setStatusLocked(e, StatusPending, nil)
	c.mu.Unlock()

	c.emit(st)
	return nil
}

// Create сразу возвращает временный id; создание идёт через ту же очередь.
func (c *Controller) Create(content string) string {
	id := PlaceholderPrefix + uuid.NewString()
	c.mu.Lock()
	e := &entry{state: BlockState{ID: id, Content: content}, rev: 1, dirty: true}
	c.entries[id] = e
	c.order = append(c.order, id)
	st := c.setStatusLocked(e, StatusPending, nil)
	c.enqueueLocked(id)
	c.mu.Unlock()

	c.emit(st)
	return id
}

// Resolve возвращает серверный id для временного; остальные id не меняются.
func (c *Controller) Resolve(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked(id)
}

// Retry ставит в очередь блок, сохранение которого завершилось ошибкой.
func (c *Controller) Retry(id string) {
	c.mu.Lock()
	id = c.resolveLocked(id)
	e, ok := c.entries[id]
	if !ok || !e.dirty {
		c.mu.Unlock()
		return
	}
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
	c.enqueueLocked(id)
	st := c.setStatusLocked(e, StatusPending, nil)
	c.mu.Unlock()

	c.emit(st)
}

// Get возвращает снимок одного блока.
func (c *Controller) Get(id string) (BlockState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[c.resolveLocked(id)]
	if !ok {
		return BlockState{}, false
	}
	return e.state, true
}

// Snapshot — все блоки в порядке отображения.
func (c *Controller) Snapshot() []BlockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]BlockState, 0, len(c.order))
	for _, id := range c.order {
		if e, ok := c.entries[id]; ok {
			out = append(out, e.state)
		}
	}
	return out
}

// Dirty — число блоков с несохранёнными правками.
func (c *Controller) Dirty() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.dirty {
			n++
		}
	}
	return n
}

// Flush немедленно запускает все отложенные сохранения и повторы, ещё раз отправляет
// блоки в статусе error и ждёт, пока очередь опустеет.
// Если сервер продолжает отвечать 429, ожидание повторяется до отмены ctx.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	c.requeueFailedLocked()
	c.mu.Unlock()
	for {
		c.mu.Lock()
		c.fireTimersLocked()
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}

		c.mu.Lock()
		retrying := len(c.queue) > 0 || c.inflight != ""
		unsaved := 0
		for _, e := range c.entries {
			if e.retry != nil || e.debounce != nil {
				retrying = true
			}
			if e.dirty {
				unsaved++
			}
		}
		c.mu.Unlock()

		if !retrying {
			if unsaved > 0 {
				return fmt.Errorf("%w: %d block(s)", ErrUnsaved, unsaved)
			}
			return nil
		}
		if !c.hasTimers() {
			continue
		}
		select {
		case <-time.After(c.opts.RetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close останавливает таймеры и рабочего. Несохранённое остаётся несохранённым — сначала Flush.
func (c *Controller) Close() {
	c.mu.Lock()
	for _, e := range c.entries {
		stopTimer(&e.debounce)
		stopTimer(&e.retry)
		stopTimer(&e.clear)
	}
	c.mu.Unlock()
	c.cancel()
	<-c.done
}

func (c *Controller) hasTimers() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.retry != nil || e.debounce != nil {
			return true
		}
	}
	return false
}

// requeueFailedLocked даёт ещё одну попытку блокам, сохранение которых упало не по 429.
func (c *Controller) requeueFailedLocked() {
	for _, id := range c.order {
		e, ok := c.entries[id]
		if !ok || !e.dirty || e.state.Status != StatusError || e.retry != nil {
			continue
		}
		c.enqueueLocked(id)
	}
}

func (c *Controller) fireTimersLocked() {
	for id, e := range c.entries {
		// таймер мог уже сработать и ждать блокировку; после stopTimer его колбэк ничего не делает
		armed := e.debounce != nil || e.retry != nil
		stopTimer(&e.debounce)
		stopTimer(&e.retry)
		if armed {
			c.enqueueLocked(id)
		}
	}
}

func (c *Controller) fireDebounce(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = c.resolveLocked(id)
	e, ok := c.entries[id]
	if !ok || e.debounceGen != gen || e.debounce == nil {
		return
	}
	e.debounce = nil
	c.enqueueLocked(id)
}

func (c *Controller) fireRetry(id string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = c.resolveLocked(id)
	e, ok := c.entries[id]
	if !ok || e.retryGen != gen || e.retry == nil {
		return
	}
	e.retry = nil
	c.enqueueLocked(id)
}

func (c *Controller) resolveLocked(id string) string {
	if real, ok := c.aliases[id]; ok {
		return real
	}
	return id
}

func (c *Controller) enqueueLocked(id string) {
	if !c.queued[id] {
		c.queued[id] = true
		c.queue = append(c.queue, id)
	}
	c.updateIdleLocked()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Controller) updateIdleLocked() {
	busy := len(c.queue) > 0 || c.inflight != ""
	switch {
	case busy && c.idleClosed:
		c.idle = make(chan struct{})
		c.idleClosed = false
	case !busy && !c.idleClosed:
		close(c.idle)
		c.idleClosed = true
	}
}

func (c *Controller) setStatusLocked(e *entry, s Status, err error) BlockState {
	e.gen++
	e.state.Status = s
	e.state.Err = err
	stopTimer(&e.clear)
	if s == StatusSynced {
		gen := e.gen
		id := e.state.ID
		e.clear = time.AfterFunc(c.opts.SyncedClear, func() { c.clearSynced(id, gen) })
	}
	return e.state
}

func (c *Controller) clearSynced(id string, gen uint64) {
	c.mu.Lock()
	e, ok := c.entries[c.resolveLocked(id)]
	if !ok || e.gen != gen || e.state.Status != StatusSynced {
		c.mu.Unlock()
		return
	}
	e.clear = nil
	st := c.setStatusLocked(e, StatusIdle, nil)
	c.mu.Unlock()

	c.emit(st)
}

func (c *Controller) emit(st BlockState) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(st)
	}
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
