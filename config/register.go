package config

import (
	"fmt"

	"github.com/unmock/unmock-go"
	"github.com/unmock/unmock-go/mock"
	"github.com/unmock/unmock-go/schema"
)

// Register upserts every configured endpoint into store and returns the store
// the last upsert produced. An endpoint without a status uses its verb's
// default; an endpoint without a response gets an empty schema.
func (c *Config) Register(store unmock.ServiceStore, opts ...mock.Option) (unmock.ServiceStore, error) {
	for i, svcCfg := range c.Services {
		svcOpts := append(append([]mock.Option(nil), opts...), mock.WithName(svcCfg.Name))
		svc := mock.New(store, svcCfg.BaseURL, svcOpts...)

		for j, ep := range svcCfg.Endpoints {
			m, err := unmock.ParseMethod(ep.Method)
			if err != nil {
				return nil, fmt.Errorf("services[%d].endpoints[%d]: %w", i, j, err)
			}
			r := svc.Method(m, ep.Path)
			status := ep.Status
			if status == 0 {
				status = m.DefaultStatus()
			}

			if ep.Response == nil {
				svc, err = r.ReplyStatus(status)
			} else {
				var v schema.Value
				v, err = schema.Decode(ep.Response)
				if err == nil {
					svc, err = r.Reply(status, v)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("services[%d].endpoints[%d]: %w", i, j, err)
			}
		}
		store = svc.Store()
	}
	return store, nil
}
