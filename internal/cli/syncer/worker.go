package syncer

import (
	"Inbox/internal/cli/api"
	"time"
)

// job — снимок того, что нужно отправить.
type job struct {
	id      string
	content string
	rev     uint64
	create  bool
}

func (c *Controller) worker() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.wake:
		}
		for {
			j, ok := c.next()
			if !ok {
				break
			}
			c.run(j)
			if c.ctx.Err() != nil {
				return
			}
		}
	}
}

// next снимает id с головы очереди. Очередь хранит только id: отправляется всегда
// последнее локальное содержимое, так что частые правки схлопываются.
func (c *Controller) next() (job, bool) {
	c.mu.Lock()
	for len(c.queue) > 0 {
		id := c.queue[0]
		c.queue = c.queue[1:]
		delete(c.queued, id)

		id = c.resolveLocked(id)
		e, ok := c.entries[id]
		if !ok || !e.dirty {
			continue
		}
		c.inflight = id
		c.updateIdleLocked()
		j := job{id: id, content: e.state.Content, rev: e.rev, create: IsPlaceholder(id)}
		st := c.setStatusLocked(e, StatusSaving, nil)
		c.mu.Unlock()

		c.emit(st)
		return j, true
	}
	c.updateIdleLocked()
	c.mu.Unlock()
	return job{}, false
}

func (c *Controller) run(j job) {
	var (
		b   *api.Block
		err error
	)
	if j.create {
		b, err = c.api.CreateBlock(c.ctx, j.content)
	} else {
		b, err = c.api.UpdateBlock(c.ctx, j.id, j.content)
	}

	c.mu.Lock()
	c.inflight = ""
	e, ok := c.entries[j.id]
	if !ok {
		c.updateIdleLocked()
		c.mu.Unlock()
		return
	}

	var st BlockState
	switch {
	case err != nil:
		st = c.failLocked(j.id, e, err)
	case j.create:
		st = c.resolvedLocked(j, e, b)
	default:
		e.state.Position = b.Position
		st = c.savedLocked(e, j.rev)
	}
	c.updateIdleLocked()
	c.mu.Unlock()

	c.emit(st)
}

// savedLocked засчитывает сохранение, только если после отправки не было новых правок.
func (c *Controller) savedLocked(e *entry, rev uint64) BlockState {
	if e.rev != rev {
		return c.setStatusLocked(e, StatusPending, nil)
	}
	e.dirty = false
	return c.setStatusLocked(e, StatusSynced, nil)
}

func (c *Controller) failLocked(id string, e *entry, err error) BlockState {
	if api.IsRateLimited(err) {
		c.log.Warnw("save rate limited, retrying", "id", id, "backoff", c.opts.RetryBackoff)
		stopTimer(&e.retry)
		e.retryGen++
		gen := e.retryGen
		e.retry = time.AfterFunc(c.opts.RetryBackoff, func() { c.fireRetry(id, gen) })
	} else {
		c.log.Warnw("save failed", "id", id, "error", err)
	}
	return c.setStatusLocked(e, StatusError, err)
}

// resolvedLocked переносит запись с временного id на серверный.
// Правки, сделанные во время создания, уйдут уже как update по настоящему id.
func (c *Controller) resolvedLocked(j job, e *entry, b *api.Block) BlockState {
	placeholder := j.id
	delete(c.entries, placeholder)
	c.aliases[placeholder] = b.ID
	c.entries[b.ID] = e
	for i, id := range c.order {
		if id == placeholder {
			c.order[i] = b.ID
		}
	}
	if c.queued[placeholder] {
		delete(c.queued, placeholder)
		for i, id := range c.queue {
			if id == placeholder {
				c.queue[i] = b.ID
			}
		}
		c.queued[b.ID] = true
	}

	e.state.ID = b.ID
	e.state.Position = b.Position
	if e.rev != j.rev && e.debounce == nil {
		// правка успела отстреляться во время создания — догоняем её сразу
		c.enqueueLocked(b.ID)
	}
	return c.savedLocked(e, j.rev)
}
