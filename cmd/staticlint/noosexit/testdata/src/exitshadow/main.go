package main

type shutdown struct{}

func (shutdown) Exit(code int) {}

func main() {
	os := shutdown{}
	os.Exit(1)
}
