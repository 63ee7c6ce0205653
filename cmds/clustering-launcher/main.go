package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/conf"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/launcher"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/metadata"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/utils/errutil"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/utils/uuid"
)

// cassandraDisabled is the sentinel flag value that turns launch metadata
// recording off.
const cassandraDisabled = "none"

var (
	tasksetArg = conf.NewStringArgument(
		"taskset",
		"Name of the taskset/schedule file pair, without extension.",
	)

	// dumpConfigFlag name includes dash to exclude it from dumping.
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)

	// dumpConfigLaunchIDFlag name includes dash to exclude it from dumping.
	dumpConfigLaunchIDFlag = conf.NewStringFlag("config-dump-launch-id", "Dump configuration recorded for a previous launch ID.", "")
)

func main() {
	conf.SetAppName("clustering-launcher")
	conf.SetHelp(`Launches the cohort of real-time tasks described by <taskset>` +
		`.rtps as a single coordinated unit. When the schedule is missing or older ` +
		`than <taskset>.rtpt it is regenerated first by invoking the external scheduler.`)

	if err := conf.ParseFlags(); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(int(launcher.CodeArgument))
	}

	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		previousLaunchID := dumpConfigLaunchIDFlag.Value()
		if previousLaunchID != "" {
			store := metadata.NewStore(previousLaunchID, metadata.ConfigFromFlags())
			errutil.Check(store.Connect())
			flags, err := store.GetKind("flags")
			errutil.Check(err)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}

	if tasksetArg.Value() == "" {
		logrus.Error("missing required argument 'taskset'")
		os.Exit(int(launcher.CodeArgument))
	}

	config := launcher.DefaultConfig()
	config.Recorder = prepareLaunchRecorder()

	if err := launcher.New(config).Run(tasksetArg.Value()); err != nil {
		logrus.Debugf("%+v", err)
		logrus.Errorf("%v", err)
		os.Exit(int(launcher.ExitCodeOf(err)))
	}
}

// prepareLaunchRecorder connects the optional Cassandra launch record store.
// NOTE: For debug it is convenient to run launches with recording disabled,
// which is the default.
func prepareLaunchRecorder() launcher.Recorder {
	if conf.CassandraAddress.Value() == cassandraDisabled {
		return nil
	}

	logrus.Infof("Connecting to Cassandra on %s", conf.CassandraAddress.Value())

	store := metadata.NewStore(uuid.New(), metadata.ConfigFromFlags())
	if err := store.Connect(); err != nil {
		logrus.Warnf("Launch metadata recording disabled: %v", err)
		return nil
	}

	if err := store.RecordFlags(); err != nil {
		logrus.Warnf("Could not record launcher configuration: %v", err)
	}

	return store
}
