package orm

import (
	"sync"

	"github.com/kbukum/restorm/errors"
	"github.com/kbukum/restorm/httpclient/rest"
	"github.com/kbukum/restorm/observability"
)

// Package-level error kinds matching the respective error of any model.
var (
	DoesNotExist            = errors.Kind{Code: errors.ErrCodeDoesNotExist}
	MultipleObjectsReturned = errors.Kind{Code: errors.ErrCodeMultipleObjectsReturned}
	ManagerAccess           = errors.Kind{Code: errors.ErrCodeManagerAccess}
)

var settings struct {
	sync.RWMutex
	client  *rest.Client
	metrics *observability.Metrics
}

// SetDefaultClient sets the client used by models whose Meta has none.
func SetDefaultClient(c *rest.Client) {
	settings.Lock()
	defer settings.Unlock()
	settings.client = c
}

// DefaultClient returns the process default client, nil when unset.
func DefaultClient() *rest.Client {
	settings.RLock()
	defer settings.RUnlock()
	return settings.client
}

// SetMetrics enables query metrics. Nil disables them.
func SetMetrics(m *observability.Metrics) {
	settings.Lock()
	defer settings.Unlock()
	settings.metrics = m
}

func currentMetrics() *observability.Metrics {
	settings.RLock()
	defer settings.RUnlock()
	return settings.metrics
}
