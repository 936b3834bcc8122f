package cache

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Policy задаёт время жизни закэшированных страниц в минутах, отдельно по
// таблицам. Ноль — таблица не кэшируется.
type Policy struct {
	DefaultMinutes int            `yaml:"default_minutes"`
	Tables         map[string]int `yaml:"tables"`
}

func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache policy: %w", err)
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse cache policy %s: %w", path, err)
	}
	return &p, nil
}

// TTL возвращает срок хранения страниц таблицы; 0 — не кэшировать.
func (p *Policy) TTL(table string) time.Duration {
	if p == nil {
		return 0
	}
	minutes := p.DefaultMinutes
	if m, ok := p.Tables[table]; ok {
		minutes = m
	}
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
