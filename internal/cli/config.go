package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/sqlcond/dialect"
	"github.com/syssam/sqlcond/schema/field"
	"github.com/syssam/sqlcond/where"
)

// load merges the config file, SQLCOND_* environment variables and the
// command flags into the options. Explicit flags win over the environment,
// which wins over the config file.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetConfigName("sqlcond")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "sqlcond"))
	}
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	}

	v.SetEnvPrefix("SQLCOND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.ConfigFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	o.Dialect = v.GetString("dialect")
	o.Schema = v.GetString("schema")
	o.Prefix = v.GetString("prefix")
	o.Underscored = v.GetBool("underscored")
	o.Timezone = v.GetString("timezone")
	o.Verbose = v.GetBool("verbose")
	o.Format = v.GetString("format")
	o.LogFormat = v.GetString("log-format")
	o.config = v
	return nil
}

// setting returns a command level setting, resolved like the global ones.
func (o *RootOptions) setting(key string) string {
	if o.config == nil {
		return ""
	}
	return o.config.GetString(key)
}

// compiler holds what a command needs to compile conditions.
type compiler struct {
	*where.Compiler
	profile dialect.Profile
	table   string // table named by the schema file, if any.
}

// newCompiler builds the condition compiler of the resolved options. The
// attributes, when not nil, take precedence over the schema file.
func (o *RootOptions) newCompiler(attrs field.Attributes, opts ...where.Option) (*compiler, error) {
	p, err := dialect.Get(o.Dialect)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
	}
	c := &compiler{profile: p}
	if attrs == nil && o.Schema != "" {
		s, err := loadSchema(o.Schema)
		if err != nil {
			return nil, err
		}
		attrs, c.table = s.attributes(), s.Table
	}
	base := []where.Option{where.WithDialect(p), where.WithTimezone(loc)}
	if attrs != nil {
		if o.Underscored {
			attrs = attrs.Underscored()
		}
		base = append(base, where.WithAttributes(attrs))
	}
	if o.Prefix != "" {
		base = append(base, where.WithPrefix(o.Prefix))
	}
	if o.Underscored {
		base = append(base, where.WithUnderscored())
	}
	c.Compiler = where.New(append(base, opts...)...)
	o.logger.Debug("compiler ready", "dialect", p.Name, "schema", o.Schema, "attributes", len(attrs))
	return c, nil
}
