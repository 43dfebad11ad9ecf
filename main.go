// main is the entry point for the cryptofeed CLI.
package main

import (
	"github.com/huangsam/cryptofeed/cmd"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/feedstore"
)

func main() {
	cmd.SetStoreManager(feedstore.Manager)

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	feedstore.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
