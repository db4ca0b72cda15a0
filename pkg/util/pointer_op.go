package util

import (
	"bytes"
	"unsafe"
)

func Load[T any](ptr unsafe.Pointer) T {
	return *(*T)(ptr)
}

func Store[T any](val T, ptr unsafe.Pointer) {
	*(*T)(ptr) = val
}

func PointerAdd(base unsafe.Pointer, offset int) unsafe.Pointer {
	return unsafe.Add(base, offset)
}

func PointerValid(ptr unsafe.Pointer) bool {
	return uintptr(ptr) != 0
}

func PointerToSlice[T any](base unsafe.Pointer, len int) []T {
	return unsafe.Slice((*T)(base), len)
}

func PointerMemcmp(lAddr, rAddr unsafe.Pointer, len int) int {
	lSlice := PointerToSlice[byte](lAddr, len)
	rSlice := PointerToSlice[byte](rAddr, len)
	ret := bytes.Compare(lSlice, rSlice)
	return ret
}
