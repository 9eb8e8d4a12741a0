// Package types provides object pools for the Result/BatchResult values
// RunOnce and RunBatch hand back on every call.
package types

import (
	"reflect"
	"sync"
)

// ResultPool manages Result[T] object pooling to reduce GC pressure.
type ResultPool[T any] struct {
	pool sync.Pool
}

// NewResultPool creates a new result pool for type T.
func NewResultPool[T any]() *ResultPool[T] {
	return &ResultPool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				return &Result[T]{}
			},
		},
	}
}

// Get retrieves a Result[T] from the pool or creates a new one.
func (rp *ResultPool[T]) Get() *Result[T] {
	return rp.pool.Get().(*Result[T])
}

// Put returns a Result[T] to the pool after resetting it.
func (rp *ResultPool[T]) Put(result *Result[T]) {
	if result == nil {
		return
	}
	var zero T
	result.Value = zero
	result.Error = nil
	result.Duration = 0
	rp.pool.Put(result)
}

// BatchResultPool manages BatchResult[T] object pooling.
type BatchResultPool[T any] struct {
	pool sync.Pool
}

// NewBatchResultPool creates a new batch result pool for type T.
func NewBatchResultPool[T any]() *BatchResultPool[T] {
	return &BatchResultPool[T]{
		pool: sync.Pool{
			New: func() interface{} {
				return &BatchResult[T]{}
			},
		},
	}
}

// Get retrieves a BatchResult[T] from the pool or creates a new one.
func (brp *BatchResultPool[T]) Get() *BatchResult[T] {
	return brp.pool.Get().(*BatchResult[T])
}

// Put returns a BatchResult[T] to the pool after resetting it.
func (brp *BatchResultPool[T]) Put(result *BatchResult[T]) {
	if result == nil {
		return
	}
	var zero T
	result.Index = 0
	result.Value = zero
	result.Error = nil
	result.Duration = 0
	brp.pool.Put(result)
}

// resultPools and batchResultPools cache one pool per concrete T so the
// GetPooled*/PutPooled* convenience functions below actually pool across
// calls, rather than building (and throwing away) a fresh sync.Pool every
// time they're invoked.
var (
	resultPools      sync.Map // reflect.Type -> *ResultPool[T] (boxed as any)
	batchResultPools sync.Map // reflect.Type -> *BatchResultPool[T] (boxed as any)
)

func resultTypeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// GetPooledResult gets a Result[T] from the process-wide pool for T,
// creating that pool on first use.
func GetPooledResult[T any]() *Result[T] {
	key := resultTypeKey[T]()
	if p, ok := resultPools.Load(key); ok {
		return p.(*ResultPool[T]).Get()
	}
	pool := NewResultPool[T]()
	actual, _ := resultPools.LoadOrStore(key, pool)
	return actual.(*ResultPool[T]).Get()
}

// PutPooledResult returns a Result[T] to the process-wide pool for T.
func PutPooledResult[T any](result *Result[T]) {
	if result == nil {
		return
	}
	key := resultTypeKey[T]()
	if p, ok := resultPools.Load(key); ok {
		p.(*ResultPool[T]).Put(result)
		return
	}
	pool := NewResultPool[T]()
	actual, _ := resultPools.LoadOrStore(key, pool)
	actual.(*ResultPool[T]).Put(result)
}

// GetPooledBatchResult gets a BatchResult[T] from the process-wide pool for T.
func GetPooledBatchResult[T any]() *BatchResult[T] {
	key := resultTypeKey[T]()
	if p, ok := batchResultPools.Load(key); ok {
		return p.(*BatchResultPool[T]).Get()
	}
	pool := NewBatchResultPool[T]()
	actual, _ := batchResultPools.LoadOrStore(key, pool)
	return actual.(*BatchResultPool[T]).Get()
}

// PutPooledBatchResult returns a BatchResult[T] to the process-wide pool for T.
func PutPooledBatchResult[T any](result *BatchResult[T]) {
	if result == nil {
		return
	}
	key := resultTypeKey[T]()
	if p, ok := batchResultPools.Load(key); ok {
		p.(*BatchResultPool[T]).Put(result)
		return
	}
	pool := NewBatchResultPool[T]()
	actual, _ := batchResultPools.LoadOrStore(key, pool)
	actual.(*BatchResultPool[T]).Put(result)
}
