package main

import "github.com/delbyte/solana-news-analysis/cmd"

func main() {
	cmd.Execute()
}
