// Package commands — подкоманды CLI Inbox и их диспетчер.
package commands

import (
	"Inbox/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrUsage — аргументы не подошли; диспетчер напечатает строку Usage команды.
var ErrUsage = errors.New("usage")

// Command — одна подкоманда inbox.
type Command interface {
	// Name — имя, под которым команду вызывают: "write", "list".
	Name() string
	// Description — одна строка для списка команд.
	Description() string
	// Usage — синтаксис аргументов, например "edit <id> <text...>".
	Usage() string
	// Run получает аргументы уже без имени команды.
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

var registry = map[string]Command{}

// Out — куда пишет CLI; тесты подменяют на буфер.
var Out io.Writer = os.Stdout

// In — источник текста для команды write.
var In io.Reader = os.Stdin

// RegisterCmd вызывается из init() файла с командой.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List — команды по алфавиту.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage — текст для `inbox help`.
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("inbox — заметки-блоки на сервере Inbox из терминала\n\n")
	b.WriteString("Usage:\n")
	b.WriteString("  inbox [--base-url host:port] [--https] [--token-file path] [--debounce 600ms] <command> [args]\n\n")
	b.WriteString("Commands:\n")
	for _, c := range List() {
		fmt.Fprintf(&b, "  %-44s %s\n", c.Usage(), c.Description())
	}
	b.WriteString("\nEnvironment: BASE_URL, ENABLE_HTTPS, TOKEN_FILE, SAVE_DEBOUNCE (флаги важнее).\n")
	b.WriteString("Run `inbox help <command>` for one command.\n")
	return b.String()
}
