package lifecycle

// NextReady pops the oldest published mesh. It reports false when the queue
// is empty or the head chunk is mid-rebuild; meshes of unloaded chunks are
// dropped. Call it from a single consumer.
func (m *Manager) NextReady() (ReadyMesh, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.ready) > 0 {
		head := m.ready[0]
		e, ok := m.entries[head.Coord]
		if !ok || e.id != head.entryID {
			m.ready[0] = ReadyMesh{}
			m.ready = m.ready[1:]
			continue
		}
		if !e.editable() {
			return ReadyMesh{}, false
		}
		m.ready[0] = ReadyMesh{}
		m.ready = m.ready[1:]
		return head, true
	}
	return ReadyMesh{}, false
}

// DrainReady pops every mesh NextReady would return, in order.
func (m *Manager) DrainReady() []ReadyMesh {
	var out []ReadyMesh
	for {
		r, ok := m.NextReady()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}
