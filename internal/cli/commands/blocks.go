package commands

import (
	"Inbox/internal/cli/api"
	"Inbox/internal/config"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const previewWidth = 60

// preview — первая строка содержимого, обрезанная до ширины.
func preview(content string) string {
	line, _, more := strings.Cut(content, "\n")
	if utf8.RuneCountInString(line) > previewWidth {
		r := []rune(line)
		return string(r[:previewWidth-1]) + "…"
	}
	if more {
		return line + " " + faint("…")
	}
	return line
}

type listCmd struct{}

func (listCmd) Name() string        { return "list" }
func (listCmd) Description() string { return "Показать все блоки по порядку" }
func (listCmd) Usage() string       { return "list" }

func (listCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
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
	if len(blocks) == 0 {
		fmt.Fprintln(Out, "Нет блоков")
		return nil
	}
	for _, b := range blocks {
		fmt.Fprintf(Out, "%4d  %s  %s\n", b.Position, faint(b.ID), preview(b.Content))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(blocks))
	return nil
}

type showCmd struct{}

func (showCmd) Name() string        { return "show" }
func (showCmd) Description() string { return "Показать блок целиком" }
func (showCmd) Usage() string       { return "show <id>" }

func (showCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	b, err := client.GetBlock(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, b.Content)
	return nil
}

type addCmd struct{}

func (addCmd) Name() string        { return "add" }
func (addCmd) Description() string { return "Добавить блок в конец" }
func (addCmd) Usage() string       { return "add <text...>" }

func (addCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	b, err := client.CreateBlock(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s added %s at %d\n", green("✓"), b.ID, b.Position)
	return nil
}

type editCmd struct{}

func (editCmd) Name() string        { return "edit" }
func (editCmd) Description() string { return "Заменить текст блока" }
func (editCmd) Usage() string       { return "edit <id> <text...>" }

func (editCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	b, err := client.UpdateBlock(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s saved %s\n", green("✓"), b.ID)
	return nil
}

type rmCmd struct{}

func (rmCmd) Name() string        { return "rm" }
func (rmCmd) Description() string { return "Удалить блоки" }
func (rmCmd) Usage() string       { return "rm <id> [id...]" }

func (rmCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	for _, id := range args {
		if err := client.DeleteBlock(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		fmt.Fprintf(Out, "%s deleted %s\n", green("✓"), id)
	}
	return nil
}

type reorderCmd struct{}

func (reorderCmd) Name() string        { return "reorder" }
func (reorderCmd) Description() string { return "Задать позиции блоков" }
func (reorderCmd) Usage() string       { return "reorder <id>=<position> [...]" }

func (reorderCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	order, err := parseOrder(args)
	if err != nil {
		return err
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	blocks, err := client.Reorder(ctx, order)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		fmt.Fprintf(Out, "%4d  %s  %s\n", b.Position, faint(b.ID), preview(b.Content))
	}
	return nil
}

func parseOrder(args []string) ([]api.Position, error) {
	if len(args) == 0 {
		return nil, ErrUsage
	}
	order := make([]api.Position, 0, len(args))
	for _, a := range args {
		id, pos, ok := strings.Cut(a, "=")
		if !ok || id == "" {
			return nil, ErrUsage
		}
		n, err := strconv.ParseInt(pos, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad position %q for %s", pos, id)
		}
		order = append(order, api.Position{ID: id, Position: n})
	}
	return order, nil
}

func init() {
	RegisterCmd(listCmd{})
	RegisterCmd(showCmd{})
	RegisterCmd(addCmd{})
	RegisterCmd(editCmd{})
	RegisterCmd(rmCmd{})
	RegisterCmd(reorderCmd{})
}
