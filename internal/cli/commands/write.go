package commands

import (
	"Inbox/internal/cli/syncer"
	"Inbox/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// flushTimeout — сколько ждём досохранения после EOF или Ctrl+C.
const flushTimeout = 30 * time.Second

type writeCmd struct{}

func (writeCmd) Name() string { return "write" }
func (writeCmd) Description() string {
	return "Писать в блок построчно из stdin с автосохранением"
}
func (writeCmd) Usage() string { return "write [id]" }

// statusPrinter выводит смену статусов из горутин контроллера.
type statusPrinter struct {
	mu sync.Mutex
}

func (p *statusPrinter) printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(Out, format, a...)
}

func (p *statusPrinter) onChange(st syncer.BlockState) {
	switch st.Status {
	case syncer.StatusSynced:
		p.printf("%s saved %s\n", green("✓"), st.ID)
	case syncer.StatusError:
		p.printf("%s %s: %v\n", red("✗"), st.ID, st.Err)
	}
}

// Run читает строки из In и дописывает их в блок; без id первая строка создаёт новый блок.
// Каждая строка — правка через контроллер синхронизации, сохранение с задержкой.
func (writeCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	blocks, err := client.ListBlocks(ctx)
	if err != nil {
		return err
	}

	p := &statusPrinter{}
	ctrl := syncer.New(client, syncer.Options{Debounce: cfg.SaveDebounce, OnChange: p.onChange})
	defer ctrl.Close()
	ctrl.Load(blocks)

	var id, content string
	if len(args) == 1 {
		id = args[0]
		st, ok := ctrl.Get(id)
		if !ok {
			return fmt.Errorf("block %s not found", id)
		}
		content = st.Content
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := readLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if id == "" {
				content = line
				id = ctrl.Create(content)
				continue
			}
			if content != "" {
				content += "\n"
			}
			content += line
			if err := ctrl.Edit(id, content); err != nil {
				return err
			}
		}
	}

	if ctrl.Dirty() > 0 {
		p.printf("%s saving…\n", yellow("…"))
	}
	// ctx может быть уже отменён сигналом, поэтому свой таймаут
	flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := ctrl.Flush(flushCtx); err != nil {
		return fmt.Errorf("not everything was saved: %w", err)
	}
	select {
	case err := <-readErr:
		return fmt.Errorf("read input: %w", err)
	default:
	}
	if id != "" {
		p.printf("%s %s\n", green("done"), ctrl.Resolve(id))
	}
	return nil
}

func init() { RegisterCmd(writeCmd{}) }
