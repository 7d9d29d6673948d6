package redismodel

type KeyGenerator interface {
	Key(path string) string
}

type PrefixKeyGenerator struct {
	Prefix string
}

func NewKeyGenerator(prefix string) *PrefixKeyGenerator {
	return &PrefixKeyGenerator{Prefix: prefix}
}

func (g *PrefixKeyGenerator) Key(path string) string {
	return g.Prefix + path
}
