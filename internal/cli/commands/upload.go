package commands

import (
	"Inbox/internal/config"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

type uploadCmd struct{}

func (uploadCmd) Name() string { return "upload" }
func (uploadCmd) Description() string {
	return "Загрузить изображение (до 2 MiB)"
}
func (uploadCmd) Usage() string { return "upload <file>" }

func (uploadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	client, _, err := authedClient(cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	// пустой тип — сервер определит сам по содержимому
	contentType := mime.TypeByExtension(filepath.Ext(args[0]))
	img, err := client.UploadImage(ctx, filepath.Base(args[0]), f, contentType)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s uploaded %s (%s, %d bytes)\n", green("✓"), img.ID, img.Mime, img.Size)
	fmt.Fprintf(Out, "![](%s%s)\n", cfg.ServerURL, img.URL)
	return nil
}

func init() { RegisterCmd(uploadCmd{}) }
