package util

// Array is a fixed size slice.
type Array[T any] []T

func NewArray[T any](size int) Array[T] {
	return make([]T, size)
}

func (self Array[T]) Length() int {
	return len(self)
}

// Fill sets every element to value.
func (self Array[T]) Fill(value T) {
	for i := range self {
		self[i] = value
	}
}
