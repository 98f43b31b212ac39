package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// The messages in this package are marshaled with the protobuf wire format
// by hand. Field numbers follow protocol.proto. Unknown fields are skipped
// on decode so that newer peers remain compatible.

type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

func (a *TaskArg) appendTo(b []byte) []byte {
	for _, id := range a.ObjectIds {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, id)
	}
	if len(a.Data) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Data)
	}
	if len(a.Metadata) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Metadata)
	}
	return b
}

func (a *TaskArg) Marshal() ([]byte, error) {
	return a.appendTo(nil), nil
}

func (a *TaskArg) Unmarshal(data []byte) error {
	*a = TaskArg{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			a.ObjectIds = append(a.ObjectIds, append([]byte(nil), v...))
			data = data[n:]

		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			a.Data = append([]byte(nil), v...)
			data = data[n:]

		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			a.Metadata = append([]byte(nil), v...)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (t *TaskSpec) appendTo(b []byte) []byte {
	if len(t.TaskId) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, t.TaskId)
	}
	if t.Name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, t.Name)
	}
	for _, arg := range t.Args {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, arg.appendTo(nil))
	}
	if t.NumReturns != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(t.NumReturns))
	}
	return b
}

func (t *TaskSpec) Marshal() ([]byte, error) {
	return t.appendTo(nil), nil
}

func (t *TaskSpec) Unmarshal(data []byte) error {
	*t = TaskSpec{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			t.TaskId = append([]byte(nil), v...)
			data = data[n:]

		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			t.Name = v
			data = data[n:]

		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			arg := &TaskArg{}
			if err := arg.Unmarshal(v); err != nil {
				return err
			}
			t.Args = append(t.Args, arg)
			data = data[n:]

		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			t.NumReturns = int64(v)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (r *PushTaskRequest) Marshal() ([]byte, error) {
	var b []byte
	if r.TaskSpec != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.TaskSpec.appendTo(nil))
	}
	return b, nil
}

func (r *PushTaskRequest) Unmarshal(data []byte) error {
	*r = PushTaskRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			r.TaskSpec = &TaskSpec{}
			if err := r.TaskSpec.Unmarshal(v); err != nil {
				return err
			}
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (o *ReturnObject) appendTo(b []byte) []byte {
	if len(o.ObjectId) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, o.ObjectId)
	}
	if len(o.Data) > 0 {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, o.Data)
	}
	if len(o.Metadata) > 0 {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, o.Metadata)
	}
	return b
}

func (o *ReturnObject) Marshal() ([]byte, error) {
	return o.appendTo(nil), nil
}

func (o *ReturnObject) Unmarshal(data []byte) error {
	*o = ReturnObject{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			o.ObjectId = append([]byte(nil), v...)
			data = data[n:]

		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			o.Data = append([]byte(nil), v...)
			data = data[n:]

		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			o.Metadata = append([]byte(nil), v...)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (r *PushTaskReply) Marshal() ([]byte, error) {
	var b []byte
	for _, obj := range r.ReturnObjects {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, obj.appendTo(nil))
	}
	return b, nil
}

func (r *PushTaskReply) Unmarshal(data []byte) error {
	*r = PushTaskReply{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			obj := &ReturnObject{}
			if err := obj.Unmarshal(v); err != nil {
				return err
			}
			r.ReturnObjects = append(r.ReturnObjects, obj)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (r *LeaseRequest) Marshal() ([]byte, error) {
	var b []byte
	if r.ResourceSpec != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.ResourceSpec.appendTo(nil))
	}
	return b, nil
}

func (r *LeaseRequest) Unmarshal(data []byte) error {
	*r = LeaseRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			r.ResourceSpec = &TaskSpec{}
			if err := r.ResourceSpec.Unmarshal(v); err != nil {
				return err
			}
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (r *LeaseReply) Marshal() ([]byte, error) {
	return nil, nil
}

func (r *LeaseReply) Unmarshal(data []byte) error {
	return skipAll(data)
}

func (r *ReturnWorkerRequest) Marshal() ([]byte, error) {
	var b []byte
	if r.WorkerId != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, r.WorkerId)
	}
	return b, nil
}

func (r *ReturnWorkerRequest) Unmarshal(data []byte) error {
	*r = ReturnWorkerRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			r.WorkerId = v
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (r *ReturnWorkerReply) Marshal() ([]byte, error) {
	return nil, nil
}

func (r *ReturnWorkerReply) Unmarshal(data []byte) error {
	return skipAll(data)
}

func (r *WatchLeasesRequest) Marshal() ([]byte, error) {
	var b []byte
	if r.WorkerId != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, r.WorkerId)
	}
	return b, nil
}

func (r *WatchLeasesRequest) Unmarshal(data []byte) error {
	*r = WatchLeasesRequest{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			r.WorkerId = v
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func (g *LeaseGrant) Marshal() ([]byte, error) {
	var b []byte
	if g.Host != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, g.Host)
	}
	if g.Port != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(g.Port)))
	}
	return b, nil
}

func (g *LeaseGrant) Unmarshal(data []byte) error {
	*g = LeaseGrant{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			g.Host = v
			data = data[n:]

		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			g.Port = int32(v)
			data = data[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func skipAll(data []byte) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
	}
	return nil
}
