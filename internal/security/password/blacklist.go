package password

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un set de passwords comunes, comparado case-insensitive.
// Inmutable después de construido; un *Blacklist nil no contiene nada.
type Blacklist struct {
	data map[string]struct{}
}

// NewBlacklist arma la lista a partir de palabras sueltas.
func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(words))}
	for _, w := range words {
		bl.add(w)
	}
	return bl
}

// LoadBlacklist lee un archivo con un password por línea. Las líneas vacías y
// las que empiezan con '#' se ignoran. path vacío devuelve una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	if strings.TrimSpace(path) == "" {
		return NewBlacklist(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("password: open blacklist: %w", err)
	}
	defer f.Close()
	return ReadBlacklist(f)
}

// ReadBlacklist es LoadBlacklist sobre un io.Reader.
func ReadBlacklist(r io.Reader) (*Blacklist, error) {
	bl := NewBlacklist()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		bl.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("password: read blacklist: %w", err)
	}
	return bl, nil
}

func (b *Blacklist) add(w string) {
	if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
		b.data[w] = struct{}{}
	}
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}
