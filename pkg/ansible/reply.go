package ansible

import (
	"encoding/json"
	"io"

	"github.com/newtron-network/bgpprop/pkg/record"
)

type exitReply struct {
	Changed     bool           `json:"changed"`
	HashDict    *record.Record `json:"hash_dict"`
	LogFilePath string         `json:"log_file_path"`
}

type failReply struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
}

// ExitJSON writes the success reply. hash_dict keeps the record's order.
func ExitJSON(w io.Writer, rec *record.Record, logPath string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(exitReply{
		HashDict:    rec,
		LogFilePath: logPath,
	})
}

// FailJSON writes the failure reply Ansible turns into a failed task.
func FailJSON(w io.Writer, msg string) error {
	return json.NewEncoder(w).Encode(failReply{Failed: true, Msg: msg})
}
