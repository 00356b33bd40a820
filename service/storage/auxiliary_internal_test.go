// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package storage

import (
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/hashchain/models/chain"
	"github.com/optakt/hashchain/testing/helpers"
	"github.com/optakt/hashchain/testing/mocks"
)

func TestLibrary_Retrieve(t *testing.T) {
	db := helpers.InMemoryDB(t)

	testKey := []byte{42}
	err := db.Update(func(tx *badger.Txn) error {
		return tx.Set(testKey, mocks.GenericBytes)
	})
	require.NoError(t, err)

	t.Run("nominal case", func(t *testing.T) {
		codec := mocks.BaselineCodec(t)
		codec.UnmarshalFunc = func(b []byte, v interface{}) error {
			assert.Equal(t, mocks.GenericBytes, b)

			ptr, ok := v.(*uint64)
			require.True(t, ok)

			*ptr = mocks.GenericIndex
			return nil
		}

		l := &Library{
			codec: codec,
		}

		var got uint64
		err := db.View(l.retrieve(testKey, &got))

		require.NoError(t, err)
		assert.Equal(t, mocks.GenericIndex, got)
	})

	t.Run("unknown key, should fail", func(t *testing.T) {
		l := &Library{
			codec: mocks.BaselineCodec(t),
		}

		var got uint64
		err := db.View(l.retrieve([]byte{13, 37}, &got))

		require.Error(t, err)
		assert.True(t, errors.Is(err, badger.ErrKeyNotFound))
	})

	t.Run("badly encoded value, should fail", func(t *testing.T) {
		codec := mocks.BaselineCodec(t)
		codec.UnmarshalFunc = func([]byte, interface{}) error {
			return mocks.GenericError
		}

		l := &Library{
			codec: codec,
		}

		var got uint64
		err := db.View(l.retrieve(testKey, &got))

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}

func TestLibrary_Save(t *testing.T) {
	db := helpers.InMemoryDB(t)

	t.Run("nominal case", func(t *testing.T) {
		codec := mocks.BaselineCodec(t)
		codec.MarshalFunc = func(v interface{}) ([]byte, error) {
			assert.Equal(t, mocks.GenericIndex, v)
			return mocks.GenericBytes, nil
		}

		l := &Library{
			codec: codec,
		}

		testKey := []byte{1}
		err := db.Update(l.save(testKey, mocks.GenericIndex))
		require.NoError(t, err)

		var got []byte
		err = db.View(func(tx *badger.Txn) error {
			item, err := tx.Get(testKey)
			if err != nil {
				return err
			}
			got, err = item.ValueCopy(nil)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, mocks.GenericBytes, got)
	})

	t.Run("encoding failure, should fail", func(t *testing.T) {
		codec := mocks.BaselineCodec(t)
		codec.MarshalFunc = func(interface{}) ([]byte, error) {
			return nil, mocks.GenericError
		}

		l := &Library{
			codec: codec,
		}

		err := db.Update(l.save([]byte{2}, mocks.GenericIndex))
		assert.ErrorIs(t, err, mocks.GenericError)
	})

	t.Run("value encoded on call", func(t *testing.T) {
		calls := 0
		codec := mocks.BaselineCodec(t)
		codec.MarshalFunc = func(interface{}) ([]byte, error) {
			calls++
			return mocks.GenericBytes, nil
		}

		l := &Library{
			codec: codec,
		}

		block := mocks.GenericBlock.Clone()
		op := l.save([]byte{3}, block)
		assert.Equal(t, 1, calls)

		err := db.Update(op)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestLibrary_IterateBlocks(t *testing.T) {
	db := helpers.InMemoryDB(t)

	codec := mocks.BaselineCodec(t)
	codec.UnmarshalFunc = func(b []byte, v interface{}) error {
		ptr, ok := v.(*chain.Block)
		require.True(t, ok)

		*ptr = chain.Block{Index: uint64(b[0])}
		return nil
	}

	l := &Library{
		codec: codec,
	}

	err := db.Update(func(tx *badger.Txn) error {
		for _, index := range []uint64{3, 1, 2} {
			err := tx.Set(EncodeKey(PrefixBlock, index), []byte{byte(index)})
			if err != nil {
				return err
			}
		}
		return tx.Set(EncodeKey(PrefixLast), []byte{9})
	})
	require.NoError(t, err)

	t.Run("nominal case", func(t *testing.T) {
		var indices []uint64
		err := db.View(l.IterateBlocks(func(block chain.Block) error {
			indices = append(indices, block.Index)
			return nil
		}))

		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2, 3}, indices)
	})

	t.Run("callback failure, should fail", func(t *testing.T) {
		err := db.View(l.IterateBlocks(func(chain.Block) error {
			return mocks.GenericError
		}))

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}

func TestCombine(t *testing.T) {
	db := helpers.InMemoryDB(t)
	txn := db.NewTransaction(false)
	defer txn.Discard()

	successFn := func(*badger.Txn) error {
		return nil
	}
	failFn := func(*badger.Txn) error {
		return mocks.GenericError
	}
	noCallFn := func(*badger.Txn) error {
		t.Log("unexpected function call")
		t.FailNow()
		return nil
	}

	t.Run("should not error if all ops succeed", func(t *testing.T) {
		err := Combine(successFn, successFn, successFn)(txn)

		assert.NoError(t, err)
	})

	t.Run("should stop at first failure", func(t *testing.T) {
		err := Combine(successFn, failFn, noCallFn)(txn)

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}
