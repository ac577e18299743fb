package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/w-h-a/fred/cacher"
)

type entry struct {
	key     string
	vector  []float32
	expires time.Time
	element *list.Element
}

type memoryCacher struct {
	options cacher.Options
	items   map[string]*entry
	order   *list.List
	now     func() time.Time
	mtx     sync.Mutex
}

func (c *memoryCacher) Get(ctx context.Context, key string) ([]float32, bool, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}

	if !ent.expires.IsZero() && !c.now().Before(ent.expires) {
		c.remove(ent)
		return nil, false, nil
	}

	c.order.MoveToFront(ent.element)

	return copyVector(ent.vector), true, nil
}

func (c *memoryCacher) Set(ctx context.Context, key string, vector []float32) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if ent, ok := c.items[key]; ok {
		ent.vector = copyVector(vector)
		ent.expires = c.expiry()
		c.order.MoveToFront(ent.element)
		return nil
	}

	if len(c.items) >= c.options.Capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(c.items[oldest.Value.(string)])
		}
	}

	c.items[key] = &entry{
		key:     key,
		vector:  copyVector(vector),
		expires: c.expiry(),
		element: c.order.PushFront(key),
	}

	return nil
}

func (c *memoryCacher) expiry() time.Time {
	if c.options.TTL <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.options.TTL)
}

func (c *memoryCacher) remove(ent *entry) {
	if ent == nil {
		return
	}
	c.order.Remove(ent.element)
	delete(c.items, ent.key)
}

func copyVector(v []float32) []float32 {
	cpy := make([]float32, len(v))
	copy(cpy, v)
	return cpy
}

func NewCacher(opts ...cacher.Option) cacher.Cacher {
	options := cacher.NewOptions(opts...)

	if options.Capacity <= 0 {
		options.Capacity = 512
	}

	c := &memoryCacher{
		options: options,
		items:   make(map[string]*entry, options.Capacity),
		order:   list.New(),
		now:     time.Now,
		mtx:     sync.Mutex{},
	}

	return c
}
