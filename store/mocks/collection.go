package mocks

import (
	"context"

	"erpbackend/store"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

type MockCollection struct {
	mock.Mock
	name string
}

func NewMockCollection(name string) *MockCollection {
	return &MockCollection{name: name}
}

func (m *MockCollection) Name() string {
	return m.name
}

func (m *MockCollection) InsertOne(ctx context.Context, doc bson.M) (bson.M, error) {
	args := m.Called(ctx, doc)
	if f, ok := args.Get(0).(func(context.Context, bson.M) bson.M); ok {
		return f(ctx, doc), args.Error(1)
	}
	res, _ := args.Get(0).(bson.M)
	return res, args.Error(1)
}

func (m *MockCollection) FindOne(ctx context.Context, filter bson.M, populate ...store.Populate) (bson.M, error) {
	var args mock.Arguments
	if len(populate) > 0 {
		args = m.Called(ctx, filter, populate)
	} else {
		args = m.Called(ctx, filter)
	}
	res, _ := args.Get(0).(bson.M)
	return res, args.Error(1)
}

func (m *MockCollection) Find(ctx context.Context, filter bson.M, opts store.FindOptions) ([]bson.M, error) {
	args := m.Called(ctx, filter, opts)
	res, _ := args.Get(0).([]bson.M)
	return res, args.Error(1)
}

func (m *MockCollection) CountDocuments(ctx context.Context, filter bson.M) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollection) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (bson.M, error) {
	args := m.Called(ctx, filter, update)
	res, _ := args.Get(0).(bson.M)
	return res, args.Error(1)
}

func (m *MockCollection) UpdateMany(ctx context.Context, filter bson.M, update bson.M) (int64, error) {
	args := m.Called(ctx, filter, update)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollection) BulkUpdate(ctx context.Context, ops []store.UpdateOp) (int64, error) {
	args := m.Called(ctx, ops)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollection) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	args := m.Called(ctx, pipeline)
	res, _ := args.Get(0).([]bson.M)
	return res, args.Error(1)
}
