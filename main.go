package main

import "zhihu_answer_publisher/cmd"

func main() {
	cmd.Execute()
}
