package control

// ForbiddenWithReply returns a Result carrying both an HTTP 403 and reply,
// a combination neither Response variant can build.
func ForbiddenWithReply(reply Reply) Result {
	return forbiddenWithReply{reply: reply}
}

type forbiddenWithReply struct {
	reply Reply
}

func (forbiddenWithReply) isResult()      {}
func (forbiddenWithReply) Status() Status { return StatusError }
func (forbiddenWithReply) Err() *Error {
	return &Error{Message: "forbidden", Code: 403, Kind: KindHTTP}
}
func (f forbiddenWithReply) Reply() Reply { return f.reply }
