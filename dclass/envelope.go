package dclass

// Message type numbers for the internal (server-to-server) wire protocol
// this schema's objects travel over. Values follow the historic Astron
// message numbering the DC compiler's envelope builders target.
const (
	MsgStateserverObjectUpdateField            uint16 = 24
	MsgStateserverObjectGenerateWithRequired    uint16 = 2001
	MsgStateserverObjectGenerateWithRequiredOther uint16 = 2003
	MsgDBSSObjectGetAll                         uint16 = 2200
	MsgDBServerCreateObject                     uint16 = 3000
)

// FormatUpdate builds a STATESERVER_OBJECT_UPDATE_FIELD datagram: doID,
// field ID, then the field's packed arguments.
func (c *Class) FormatUpdate(target, sender, doID uint64, f Field, args []interface{}) (*Datagram, error) {
	dg := NewDatagram()
	if err := dg.AddServerHeader([]uint64{target}, sender, MsgStateserverObjectUpdateField); err != nil {
		return nil, err
	}
	if err := dg.AddChannel(doID); err != nil {
		return nil, err
	}
	if err := dg.AddUint16(uint64(f.Number())); err != nil {
		return nil, err
	}
	if err := f.PackArgs(dg, args); err != nil {
		return nil, err
	}
	return dg, nil
}

// AIFormatGenerate builds a STATESERVER_OBJECT_GENERATE_WITH_REQUIRED[_OTHER]
// datagram for an AI creating one of this class's objects: doID, parent,
// zone, then every "required" field's value, followed (if any optional
// field is supplied) by its field ID and value for each optional field.
func (c *Class) AIFormatGenerate(target, sender, doID, parentID, zoneID uint64, required map[string]interface{}, optional map[string]interface{}) (*Datagram, error) {
	dg := NewDatagram()
	msgType := MsgStateserverObjectGenerateWithRequired
	if len(optional) > 0 {
		msgType = MsgStateserverObjectGenerateWithRequiredOther
	}
	if err := dg.AddServerHeader([]uint64{target}, sender, msgType); err != nil {
		return nil, err
	}
	if err := dg.AddChannel(doID); err != nil {
		return nil, err
	}
	if err := dg.AddChannel(parentID); err != nil {
		return nil, err
	}
	if err := dg.AddUint32(zoneID); err != nil {
		return nil, err
	}
	if err := dg.AddUint16(uint64(c.index)); err != nil {
		return nil, err
	}
	for _, f := range c.BuildInheritedFields() {
		if !f.IsRequired() {
			continue
		}
		v, ok := required[f.Name()]
		if !ok {
			if !f.HasDefaultValue() {
				return nil, encodeErrorf("class %s: missing required field %s for generate", c.name, f.Name())
			}
			dg.AddBytes(f.DefaultValue())
			continue
		}
		if err := f.PackArgs(dg, []interface{}{v}); err != nil {
			return nil, err
		}
	}
	if len(optional) > 0 {
		if err := dg.AddUint16(uint64(len(optional))); err != nil {
			return nil, err
		}
		for name, v := range optional {
			f, ok := c.FieldByName(name)
			if !ok {
				return nil, encodeErrorf("class %s: no such field %s", c.name, name)
			}
			if err := dg.AddUint16(uint64(f.Number())); err != nil {
				return nil, err
			}
			if err := f.PackArgs(dg, []interface{}{v}); err != nil {
				return nil, err
			}
		}
	}
	return dg, nil
}

// AIDatabaseGenerateContext builds a DBSERVER_CREATE_OBJECT datagram asking
// the database to allocate a new object of this class, carrying only the
// "db" fields supplied and a caller-chosen context id to correlate the
// eventual reply.
func (c *Class) AIDatabaseGenerateContext(target, sender uint64, context uint32, dbFields map[string]interface{}) (*Datagram, error) {
	dg := NewDatagram()
	if err := dg.AddServerHeader([]uint64{target}, sender, MsgDBServerCreateObject); err != nil {
		return nil, err
	}
	if err := dg.AddUint32(uint64(context)); err != nil {
		return nil, err
	}
	if err := dg.AddUint16(uint64(c.index)); err != nil {
		return nil, err
	}
	if err := dg.AddUint16(uint64(len(dbFields))); err != nil {
		return nil, err
	}
	for name, v := range dbFields {
		f, ok := c.FieldByName(name)
		if !ok || !f.IsDb() {
			return nil, encodeErrorf("class %s: %s is not a db field", c.name, name)
		}
		if err := dg.AddUint16(uint64(f.Number())); err != nil {
			return nil, err
		}
		if err := f.PackArgs(dg, []interface{}{v}); err != nil {
			return nil, err
		}
	}
	return dg, nil
}

// DatabaseGenerateContext builds a DBSS_OBJECT_GET_ALL datagram requesting
// every stored field of an existing database object, tagged with context
// for correlating the reply.
func (c *Class) DatabaseGenerateContext(target, sender, doID uint64, context uint32) (*Datagram, error) {
	dg := NewDatagram()
	if err := dg.AddServerHeader([]uint64{target}, sender, MsgDBSSObjectGetAll); err != nil {
		return nil, err
	}
	if err := dg.AddChannel(doID); err != nil {
		return nil, err
	}
	if err := dg.AddUint32(uint64(context)); err != nil {
		return nil, err
	}
	return dg, nil
}
