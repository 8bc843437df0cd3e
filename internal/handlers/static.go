package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// spaFromDisk раздаёт статику из dir. Путь без расширения, которого нет на диске,
// получает index.html (клиентский роутинг); отсутствующий файл с расширением — 404.
func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean("/" + r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := filepath.Join(dir, filepath.FromSlash(reqPath))
		if info, err := os.Stat(staticPath); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}
		if path.Ext(reqPath) != "" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	})
}
