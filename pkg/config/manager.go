package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
)

// Flag names. They double as viper keys, except the clean command's --all
// and the release command's --bump, which bind to the clean-all and
// bump-type keys so their environment forms are CLEAN_ALL and BUMP_TYPE.
const (
	FlagRegistry                = "registry"
	FlagTag                     = "tag"
	FlagNamespace               = "namespace"
	FlagMonitoringType          = "monitoring-type"
	FlagRemoveMonitoring        = "remove-monitoring"
	FlagPersistent              = "persistent"
	FlagDeletePersistentStorage = "delete-persistent-storage"
	FlagCOOStorageClass         = "coo-storage-class"
	FlagCOOStorageSize          = "coo-storage-size"
	FlagUWMStorageClass         = "uwm-storage-class"
	FlagUWMStorageSize          = "uwm-storage-size"
	FlagRemoveOperator          = "remove-operator"
	FlagCleanAll                = "all"
	FlagBump                    = "bump"
	FlagVerbose                 = "verbose"
	FlagLogLevel                = "log-level"
)

const (
	keyCleanAll = "clean-all"
	keyBumpType = "bump-type"
)

// ErrInvalidBumpType is returned when the bump type is not a semver component.
var ErrInvalidBumpType = errors.New("invalid bump type")

// Manager resolves the CLI configuration from flags, environment variables
// and defaults, in that order of precedence.
type Manager struct {
	viper *viper.Viper
}

// NewManager initializes viper for environment resolution. Keys map to
// environment variables by uppercasing and replacing dashes, so the
// monitoring-type key resolves MONITORING_TYPE.
func NewManager() *Manager {
	viperInstance := viper.New()
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viperInstance.AutomaticEnv()

	viperInstance.SetDefault(FlagRegistry, DefaultRegistry)
	viperInstance.SetDefault(FlagTag, DefaultTag)
	viperInstance.SetDefault(FlagNamespace, DefaultNamespace)
	viperInstance.SetDefault(FlagCOOStorageSize, DefaultStorageSize)
	viperInstance.SetDefault(FlagUWMStorageSize, DefaultStorageSize)
	viperInstance.SetDefault(FlagLogLevel, DefaultLogLevel)
	viperInstance.SetDefault(keyBumpType, DefaultBumpType)
	// monitoring-type deliberately has no default here: IsSet must
	// distinguish an explicit request from the coo fallback.

	return &Manager{viper: viperInstance}
}

// BindFlags binds every recognized flag in the set so flag values override
// environment variables. Unrecognized flags (help, cobra internals) are
// ignored. Call once per command after its flags are registered.
func (m *Manager) BindFlags(flags *pflag.FlagSet) {
	flags.VisitAll(func(flag *pflag.Flag) {
		key, known := keyForFlag(flag.Name)
		if !known {
			return
		}

		_ = m.viper.BindPFlag(key, flag)
	})
}

func keyForFlag(name string) (string, bool) {
	switch name {
	case FlagCleanAll:
		return keyCleanAll, true
	case FlagBump:
		return keyBumpType, true
	case FlagRegistry, FlagTag, FlagNamespace, FlagMonitoringType,
		FlagRemoveMonitoring, FlagPersistent, FlagDeletePersistentStorage,
		FlagCOOStorageClass, FlagCOOStorageSize, FlagUWMStorageClass,
		FlagUWMStorageSize, FlagRemoveOperator, FlagVerbose, FlagLogLevel:
		return name, true
	default:
		return "", false
	}
}

// Load resolves the final configuration.
func (m *Manager) Load() (Config, error) {
	cfg := Config{
		Registry:                m.viper.GetString(FlagRegistry),
		Tag:                     m.viper.GetString(FlagTag),
		Namespace:               m.viper.GetString(FlagNamespace),
		RemoveMonitoring:        m.viper.GetBool(FlagRemoveMonitoring),
		Persistent:              m.viper.GetBool(FlagPersistent),
		DeletePersistentStorage: m.viper.GetBool(FlagDeletePersistentStorage),
		COOStorageClass:         m.viper.GetString(FlagCOOStorageClass),
		COOStorageSize:          m.viper.GetString(FlagCOOStorageSize),
		UWMStorageClass:         m.viper.GetString(FlagUWMStorageClass),
		UWMStorageSize:          m.viper.GetString(FlagUWMStorageSize),
		RemoveOperator:          m.viper.GetBool(FlagRemoveOperator),
		CleanAll:                m.viper.GetBool(keyCleanAll),
		BumpType:                m.viper.GetString(keyBumpType),
		Verbose:                 m.viper.GetBool(FlagVerbose),
		LogLevel:                m.viper.GetString(FlagLogLevel),
	}

	monitoringType := v1alpha1.TypeCOO

	explicit := m.viper.IsSet(FlagMonitoringType)
	if explicit {
		if err := monitoringType.Set(m.viper.GetString(FlagMonitoringType)); err != nil {
			return Config{}, fmt.Errorf("resolve monitoring type: %w", err)
		}
	}

	cfg.MonitoringType = monitoringType
	cfg.MonitoringTypeExplicit = explicit

	if err := validateBumpType(cfg.BumpType); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateBumpType(bumpType string) error {
	switch bumpType {
	case BumpPatch, BumpMinor, BumpMajor:
		return nil
	default:
		return fmt.Errorf(
			"%w: %q (valid options: %s, %s, %s)",
			ErrInvalidBumpType, bumpType, BumpPatch, BumpMinor, BumpMajor,
		)
	}
}
