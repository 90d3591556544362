package service

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// noMatch 缓存中表示未匹配
const noMatch = -1

// class 端点类运行时状态
type class struct {
	name  string
	re    *regexp.Regexp // nil 表示总是匹配
	count int
}

func (c *class) matches(key string) bool {
	return c.re == nil || c.re.MatchString(key)
}

// compileClasses 编译端点类，调用前配置已通过验证
func compileClasses(cfgs []ClassConfig) ([]*class, error) {
	out := make([]*class, 0, len(cfgs))
	for _, cfg := range cfgs {
		c := &class{name: cfg.Name}
		if cfg.Pattern != MatchAll {
			re, err := regexp.Compile(cfg.Pattern)
			if err != nil {
				return nil, err
			}
			c.re = re
		}
		out = append(out, c)
	}
	return out, nil
}

// matcher 带缓存的端点类解析
type matcher struct {
	classes []*class
	cache   *lru.Cache[string, int]
}

func newMatcher(classes []*class, cacheSize int) (*matcher, error) {
	m := &matcher{classes: classes}
	if cacheSize > 0 {
		cache, err := lru.New[string, int](cacheSize)
		if err != nil {
			return nil, err
		}
		m.cache = cache
	}
	return m, nil
}

// resolve 返回第一个匹配的端点类，未匹配返回 nil
func (m *matcher) resolve(key string) *class {
	if m.cache != nil {
		if idx, ok := m.cache.Get(key); ok {
			if idx == noMatch {
				return nil
			}
			return m.classes[idx]
		}
	}

	idx := noMatch
	for i, c := range m.classes {
		if c.matches(key) {
			idx = i
			break
		}
	}
	if m.cache != nil {
		m.cache.Add(key, idx)
	}
	if idx == noMatch {
		return nil
	}
	return m.classes[idx]
}

// cached 返回缓存条目数
func (m *matcher) cached() int {
	if m.cache == nil {
		return 0
	}
	return m.cache.Len()
}
