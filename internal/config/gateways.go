package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Sources a gateway rule can read a refund reference from.
const (
	GatewaySourceOrderMeta  = "order_meta"
	GatewaySourceRefundMeta = "refund_meta"
	GatewaySourceNone       = "none"
)

// GatewayRule describes where a gateway stores its refund transaction reference.
type GatewayRule struct {
	Key     string `mapstructure:"key"`
	Source  string `mapstructure:"source"`
	MetaKey string `mapstructure:"meta_key"`
	List    bool   `mapstructure:"list"`
}

type GatewayRulesHolder struct {
	current atomic.Value // holds []GatewayRule

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewGatewayRulesHolder loads gateways.yml and reloads it whenever the file is
// written, until the application stops. Without an explicit path a missing
// file yields an empty rule set.
func NewGatewayRulesHolder(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*GatewayRulesHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.gateways")

	v := viper.New()
	if cfg.GatewaysConfigPath != "" {
		v.SetConfigFile(cfg.GatewaysConfigPath)
	} else {
		v.SetConfigName("gateways")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/paymentslog")
		v.AddConfigPath(".")
	}

	holder := &GatewayRulesHolder{}
	holder.current.Store([]GatewayRule{})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return holder, nil
		}
		return nil, err
	}

	rules, err := decodeGatewayRules(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(rules)

	if err := holder.watch(v, log); err != nil {
		return nil, err
	}
	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return holder.Close()
			},
		})
	}

	return holder, nil
}

// watch follows the directory of the loaded file so editors that replace the
// file on save are picked up too.
func (h *GatewayRulesHolder) watch(v *viper.Viper, log *zap.Logger) error {
	file := filepath.Clean(v.ConfigFileUsed())
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch gateway rules: %w", err)
	}
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch gateway rules: %w", err)
	}

	h.watcher = watcher
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != file || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				h.reload(v, log, event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("gateway rules watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (h *GatewayRulesHolder) reload(v *viper.Viper, log *zap.Logger, name string) {
	if err := v.ReadInConfig(); err != nil {
		log.Warn("gateway rules reload ignored", zap.String("file", name), zap.Error(err))
		return
	}
	updated, err := decodeGatewayRules(v)
	if err != nil {
		log.Warn("gateway rules reload ignored", zap.String("file", name), zap.Error(err))
		return
	}
	h.current.Store(updated)
	log.Info("gateway rules reloaded", zap.String("file", name), zap.Int("rules", len(updated)))
}

// Close stops watching the rules file. The last loaded rules stay in effect.
func (h *GatewayRulesHolder) Close() error {
	if h == nil || h.watcher == nil {
		return nil
	}
	err := h.watcher.Close()
	<-h.done
	return err
}

// NewStaticGatewayRules returns a holder that never reloads.
func NewStaticGatewayRules(rules ...GatewayRule) (*GatewayRulesHolder, error) {
	normalized, err := normalizeGatewayRules(rules)
	if err != nil {
		return nil, err
	}
	holder := &GatewayRulesHolder{}
	holder.current.Store(normalized)
	return holder, nil
}

// Rules returns the current rule snapshot.
func (h *GatewayRulesHolder) Rules() []GatewayRule {
	if h == nil {
		return nil
	}
	return h.current.Load().([]GatewayRule)
}

func decodeGatewayRules(v *viper.Viper) ([]GatewayRule, error) {
	var rules []GatewayRule
	if err := v.UnmarshalKey("gateways", &rules); err != nil {
		return nil, err
	}
	return normalizeGatewayRules(rules)
}

func normalizeGatewayRules(rules []GatewayRule) ([]GatewayRule, error) {
	out := make([]GatewayRule, 0, len(rules))
	seen := map[string]struct{}{}
	for i, rule := range rules {
		rule.Key = strings.ToLower(strings.TrimSpace(rule.Key))
		rule.Source = strings.ToLower(strings.TrimSpace(rule.Source))
		rule.MetaKey = strings.TrimSpace(rule.MetaKey)
		if rule.Key == "" {
			return nil, fmt.Errorf("gateways[%d].key cannot be empty", i)
		}
		if _, ok := seen[rule.Key]; ok {
			return nil, fmt.Errorf("gateways[%d].key %q is duplicated", i, rule.Key)
		}
		seen[rule.Key] = struct{}{}
		switch rule.Source {
		case GatewaySourceOrderMeta, GatewaySourceRefundMeta:
			if rule.MetaKey == "" {
				return nil, fmt.Errorf("gateways[%d].meta_key is required for source %s", i, rule.Source)
			}
		case GatewaySourceNone:
		default:
			return nil, fmt.Errorf("gateways[%d].source %q is not supported", i, rule.Source)
		}
		out = append(out, rule)
	}
	return out, nil
}
