package util

// List is a growable slice.
type List[T any] []T

func NewList[T any](capacity int) List[T] {
	return make([]T, 0, capacity)
}

func (self *List[T]) Add(value T) {
	*self = append(*self, value)
}

func (self List[T]) Get(index int) T {
	return self[index]
}

func (self List[T]) Length() int {
	return len(self)
}

func (self List[T]) Last() T {
	return self[len(self)-1]
}

// Clear removes all elements but keeps the capacity.
func (self *List[T]) Clear() {
	*self = (*self)[:0]
}

// Reverse reverses the list in place.
func (self List[T]) Reverse() {
	for i, j := 0, len(self)-1; i < j; i, j = i+1, j-1 {
		self[i], self[j] = self[j], self[i]
	}
}
