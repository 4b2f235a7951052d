// Package blob реализует файловое хранилище загруженных изображений.
package blob

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store кладет объекты под базовый каталог и выдает публичные URL,
// по которым их раздает HTTP-сервер.
type Store struct {
	baseDir string
	baseURL string
}

func NewStore(baseDir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "images"), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload сохраняет объект под ключом images/<имя файла> и возвращает ключ.
// Одноименный объект перезаписывается без проверок.
func (s *Store) Upload(name string, data []byte) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	key := path.Join("images", base)
	if err := os.WriteFile(filepath.Join(s.baseDir, "images", base), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return key, nil
}

// PublicURL возвращает URL, по которому объект доступен снаружи.
func (s *Store) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Dir возвращает базовый каталог для статической раздачи.
func (s *Store) Dir() string {
	return s.baseDir
}
