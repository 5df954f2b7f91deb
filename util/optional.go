package util

type Optional[T any] struct {
	Value T
	ok    bool
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, ok: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (self Optional[T]) HasValue() bool {
	return self.ok
}
