/*
Package conf extends builtin 'flag' package to provide:
- environment parsing with predefined prefix,
- config file generation with grouping (instead of lexicographical order),
- ability to extract current values of registered flags (defined with wrappers),
- positional argument wrappers,
- predefined flags for logging (logrus integration),

By default it registers the following option:
<RTGOMP_LOG> --log <Log level: debug, info, warn, error, fatal, panic> Default: error

When `ParseEnv` is executed, only the environment arguments are parsed and
ready to be used in `promises` variables. `ParseEnv` can be run multiple times.

When `ParseFlags` is executed, the arguments from both CLI and Env are parsed.
In case of --help option - it prints help.
*/
package conf
