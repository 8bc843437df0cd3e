package commands

import (
	"Inbox/internal/cli/api"
	"Inbox/internal/cli/repo/fs"
	"Inbox/internal/config"
	"fmt"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// warnRateLimited печатает предупреждение на каждый ответ 429.
func warnRateLimited(ev api.RequestEvent) {
	if ev.Status == 429 {
		fmt.Fprintf(Out, "%s %s %s: server is rate limiting, will retry\n", yellow("!"), ev.Method, ev.Path)
	}
}

// anonClient — клиент без сессии (register, login).
func anonClient(cfg *config.Config) (*api.Client, *fs.TokenStore) {
	return api.New(cfg.ServerURL, api.WithObserver(api.ObserverFunc(warnRateLimited))), fs.NewTokenStore(cfg.TokenFile)
}

// authedClient — клиент с сохранённым токеном; без токена возвращает fs.ErrNoToken.
func authedClient(cfg *config.Config) (*api.Client, *fs.TokenStore, error) {
	store := fs.NewTokenStore(cfg.TokenFile)
	creds, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	c := api.New(cfg.ServerURL, api.WithToken(creds.Token), api.WithObserver(api.ObserverFunc(warnRateLimited)))
	return c, store, nil
}
