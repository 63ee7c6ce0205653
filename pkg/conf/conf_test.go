package conf

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

const testAppName = "testAppName"

var (
	customFlag = NewStringFlag("custom_arg", "help", "default")

	// Name includes a dash so it must not show up in configuration dumps.
	dumpExcludedFlag = NewBoolFlag("dump-excluded", "help", false)

	testArg = NewStringArgument("test_arg", "help")
)

func clearEnv() {
	// Clear all environment variables in context of that test.
	logLevelFlag.clear()
	customFlag.clear()
}

func TestFlag(t *testing.T) {
	Convey("While using Flag struct, it should construct proper launcher environment var name", t, func() {
		So(NewStringFlag("test_name", "", "").envName(), ShouldEqual, "RTGOMP_TEST_NAME")
	})
}

func TestConf(t *testing.T) {
	Convey("While using Conf pkg", t, func() {
		clearEnv()
		defer clearEnv()

		SetAppName(testAppName)
		SetHelp("help")

		Convey("Name and help should match to specified one", func() {
			So(AppName(), ShouldEqual, testAppName)
			So(app.Help, ShouldEqual, "help")
		})

		Convey("Log level can be fetched", func() {
			So(LogLevel(), ShouldEqual, logrus.ErrorLevel)
		})

		Convey("Log level can be fetched from env", func() {
			os.Setenv(logLevelFlag.envName(), "debug")

			err := ParseEnv()
			So(err, ShouldBeNil)

			So(LogLevel(), ShouldEqual, logrus.DebugLevel)
		})

		Convey("Custom flag can be fetched from env", func() {
			os.Setenv(customFlag.envName(), "overridden")

			err := ParseEnv()
			So(err, ShouldBeNil)

			So(customFlag.Value(), ShouldEqual, "overridden")
		})

		Convey("Registered flags are present in the flag map", func() {
			err := ParseEnv()
			So(err, ShouldBeNil)

			flags := GetFlags()
			So(flags, ShouldContainKey, "custom_arg")
			So(flags, ShouldContainKey, "log")
		})

		Convey("An absent positional argument parses as the empty value", func() {
			err := ParseEnv()
			So(err, ShouldBeNil)

			So(testArg.Value(), ShouldEqual, "")
		})

		Convey("Configuration dump renders an environment script", func() {
			os.Setenv(customFlag.envName(), "fromenv")

			err := ParseEnv()
			So(err, ShouldBeNil)

			dump := DumpConfig()
			So(dump, ShouldContainSubstring, "set -o allexport")
			So(dump, ShouldContainSubstring, "set +o allexport")
			So(dump, ShouldContainSubstring, "RTGOMP_CUSTOM_ARG=fromenv")

			Convey("Flags with a dash in the name are excluded", func() {
				So(dumpExcludedFlag.Value(), ShouldBeFalse)
				So(dump, ShouldNotContainSubstring, "DUMP-EXCLUDED")
			})

			Convey("Values from a stored flag map take precedence", func() {
				restored := DumpConfigMap(map[string]string{"custom_arg": "fromstore"})
				So(restored, ShouldContainSubstring, "RTGOMP_CUSTOM_ARG=fromstore")
				So(restored, ShouldNotContainSubstring, "RTGOMP_CUSTOM_ARG=fromenv")
			})
		})
	})
}
