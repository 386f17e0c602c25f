package session

import "sync"

// Pool tracks live clients so they can be closed together on shutdown.
type Pool struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewPool() *Pool {
	return &Pool{clients: make(map[*Client]struct{})}
}

func (p *Pool) Add(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[c] = struct{}{}
}

func (p *Pool) Remove(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, c)
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

// CloseAll closes every tracked client and returns how many there were.
func (p *Pool) CloseAll() int {
	p.mu.Lock()
	clients := make([]*Client, 0, len(p.clients))
	for c := range p.clients {
		clients = append(clients, c)
	}
	p.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	return len(clients)
}
