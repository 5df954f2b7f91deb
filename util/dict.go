package util

type Dict[K comparable, V any] map[K]V

func NewDict[K comparable, V any](capacity int) Dict[K, V] {
	return make(map[K]V, capacity)
}

func (self Dict[K, V]) Get(key K) V {
	return self[key]
}

func (self Dict[K, V]) Set(key K, value V) {
	self[key] = value
}

func (self Dict[K, V]) ContainsKey(key K) bool {
	_, ok := self[key]
	return ok
}

func (self Dict[K, V]) Delete(key K) {
	delete(self, key)
}

func (self Dict[K, V]) Length() int {
	return len(self)
}

func (self Dict[K, V]) Keys() List[K] {
	keys := NewList[K](len(self))
	for k := range self {
		keys.Add(k)
	}
	return keys
}
