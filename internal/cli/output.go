package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Response json 输出结构
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// OutputFormatter 按格式输出命令结果
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Success 输出成功结果，text 模式下由 render 负责排版
func (f *OutputFormatter) Success(data interface{}, render func(io.Writer) error) error {
	if f.Format == "json" {
		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(Response{Status: "ok", Data: data})
	}
	if render != nil {
		return render(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}
