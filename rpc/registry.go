package rpc

import (
	"container/list"
	"time"
)

// registry maps correlation ids to pending requests and remembers creation
// order so sweeps visit requests oldest first. It is not synchronized; the
// owning Peer serializes access.
type registry struct {
	index map[string]*list.Element
	order *list.List
}

func newRegistry() *registry {
	return &registry{
		index: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (self *registry) insert(req *Request) bool {
	if _, ok := self.index[req.ID]; ok {
		return false
	}
	self.index[req.ID] = self.order.PushBack(req)
	return true
}

func (self *registry) lookup(id string) (*Request, bool) {
	if elem, ok := self.index[id]; ok {
		return elem.Value.(*Request), true
	}
	return nil, false
}

func (self *registry) remove(id string) (*Request, bool) {
	elem, ok := self.index[id]
	if !ok {
		return nil, false
	}
	delete(self.index, id)
	req, _ := self.order.Remove(elem).(*Request)
	return req, true
}

func (self *registry) len() int {
	return len(self.index)
}

func (self *registry) ids() []string {
	ids := make([]string, 0, len(self.index))
	for elem := self.order.Front(); elem != nil; elem = elem.Next() {
		ids = append(ids, elem.Value.(*Request).ID)
	}
	return ids
}

// expired returns the ids whose deadline has passed at now, in creation order.
func (self *registry) expired(now time.Time) []string {
	ids := []string{}
	for elem := self.order.Front(); elem != nil; elem = elem.Next() {
		req := elem.Value.(*Request)
		if req.Expired(now) {
			ids = append(ids, req.ID)
		}
	}
	return ids
}
