package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}

// RecordDecode mock
func (me *MetricsEngineMock) RecordDecode(labels DecodeLabels) {
	me.Called(labels)
}

// RecordDecodeTime mock
func (me *MetricsEngineMock) RecordDecodeTime(labels DecodeLabels, length time.Duration) {
	me.Called(labels, length)
}
