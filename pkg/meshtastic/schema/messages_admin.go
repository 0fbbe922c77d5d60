package schema

import "google.golang.org/protobuf/encoding/protowire"

// AdminMessage carries one remote-control request or response variant.
// Exactly one field is populated per instance, mirroring the real
// schema's oneof payload_variant.
type AdminMessage struct {
	SetConfig       *Config
	SetModuleConfig *ModuleConfig
	SetChannel      *Channel
	SetOwner        *User
	SetFixedPosition *Position
	SetCannedMessageModuleMessages string
	HasSetCanned    bool

	GetChannelRequest  uint32
	HasGetChannelReq   bool
	GetChannelResponse *Channel

	GetConfigRequest  uint32
	HasGetConfigReq   bool
	GetConfigResponse *Config

	GetModuleConfigRequest  uint32
	HasGetModuleConfigReq   bool
	GetModuleConfigResponse *ModuleConfig

	GetOwnerRequest  bool
	HasGetOwnerReq   bool
	GetOwnerResponse *User

	GetDeviceMetadataRequest  bool
	HasGetMetadataReq         bool
	GetDeviceMetadataResponse *DeviceMetadata

	BeginEditSettings  bool
	HasBeginEdit       bool
	CommitEditSettings bool
	HasCommitEdit      bool

	NodedbReset      int32
	HasNodedbReset   bool
	RemoveByNodenum  uint32
	HasRemoveByNodenum bool

	ShutdownSeconds    int32
	HasShutdown        bool
	RebootSeconds      int32
	HasReboot          bool
	RebootOtaSeconds   int32
	HasRebootOta       bool
	FactoryResetDevice int32
	HasFactoryResetDevice bool
	FactoryResetConfig int32
	HasFactoryResetConfig bool

	EnterDfuModeRequest bool
	HasEnterDfu         bool
}

func (a *AdminMessage) MarshalVT() ([]byte, error) {
	var b []byte
	var err error

	if a.SetConfig != nil {
		if b, err = appendMessageField(b, 1, a.SetConfig); err != nil {
			return nil, err
		}
	}
	if a.SetModuleConfig != nil {
		if b, err = appendMessageField(b, 2, a.SetModuleConfig); err != nil {
			return nil, err
		}
	}
	if a.SetChannel != nil {
		if b, err = appendMessageField(b, 3, a.SetChannel); err != nil {
			return nil, err
		}
	}
	if a.SetOwner != nil {
		if b, err = appendMessageField(b, 4, a.SetOwner); err != nil {
			return nil, err
		}
	}
	if a.SetFixedPosition != nil {
		if b, err = appendMessageField(b, 5, a.SetFixedPosition); err != nil {
			return nil, err
		}
	}
	if a.HasSetCanned {
		b = appendStringField(b, 6, a.SetCannedMessageModuleMessages)
	}
	if a.HasGetChannelReq {
		b = protowire.AppendTag(b, 7, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.GetChannelRequest))
	}
	if a.GetChannelResponse != nil {
		if b, err = appendMessageField(b, 8, a.GetChannelResponse); err != nil {
			return nil, err
		}
	}
	if a.HasGetConfigReq {
		b = protowire.AppendTag(b, 9, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.GetConfigRequest))
	}
	if a.GetConfigResponse != nil {
		if b, err = appendMessageField(b, 10, a.GetConfigResponse); err != nil {
			return nil, err
		}
	}
	if a.HasGetModuleConfigReq {
		b = protowire.AppendTag(b, 11, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.GetModuleConfigRequest))
	}
	if a.GetModuleConfigResponse != nil {
		if b, err = appendMessageField(b, 12, a.GetModuleConfigResponse); err != nil {
			return nil, err
		}
	}
	if a.HasGetOwnerReq {
		b = appendBoolField(b, 13, a.GetOwnerRequest)
		if !a.GetOwnerRequest {
			// appendBoolField drops false; force the tag so presence survives.
			b = protowire.AppendTag(b, 13, protowire.VarintType)
			b = protowire.AppendVarint(b, 0)
		}
	}
	if a.GetOwnerResponse != nil {
		if b, err = appendMessageField(b, 14, a.GetOwnerResponse); err != nil {
			return nil, err
		}
	}
	if a.HasGetMetadataReq {
		b = protowire.AppendTag(b, 15, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(a.GetDeviceMetadataRequest))
	}
	if a.GetDeviceMetadataResponse != nil {
		if b, err = appendMessageField(b, 16, a.GetDeviceMetadataResponse); err != nil {
			return nil, err
		}
	}
	if a.HasBeginEdit {
		b = protowire.AppendTag(b, 17, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(a.BeginEditSettings))
	}
	if a.HasCommitEdit {
		b = protowire.AppendTag(b, 18, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(a.CommitEditSettings))
	}
	if a.HasNodedbReset {
		b = protowire.AppendTag(b, 19, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.NodedbReset)))
	}
	if a.HasRemoveByNodenum {
		b = protowire.AppendTag(b, 20, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(a.RemoveByNodenum))
	}
	if a.HasShutdown {
		b = protowire.AppendTag(b, 21, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.ShutdownSeconds)))
	}
	if a.HasReboot {
		b = protowire.AppendTag(b, 22, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.RebootSeconds)))
	}
	if a.HasRebootOta {
		b = protowire.AppendTag(b, 23, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.RebootOtaSeconds)))
	}
	if a.HasFactoryResetDevice {
		b = protowire.AppendTag(b, 24, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.FactoryResetDevice)))
	}
	if a.HasFactoryResetConfig {
		b = protowire.AppendTag(b, 25, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(a.FactoryResetConfig)))
	}
	if a.HasEnterDfu {
		b = protowire.AppendTag(b, 26, protowire.VarintType)
		b = protowire.AppendVarint(b, boolVarint(a.EnterDfuModeRequest))
	}
	return b, nil
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (a *AdminMessage) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			c := new(Config)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			a.SetConfig = c
		case 2:
			m := new(ModuleConfig)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			a.SetModuleConfig = m
		case 3:
			c := new(Channel)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			a.SetChannel = c
		case 4:
			u := new(User)
			if err := u.UnmarshalVT(val); err != nil {
				return err
			}
			a.SetOwner = u
		case 5:
			p := new(Position)
			if err := p.UnmarshalVT(val); err != nil {
				return err
			}
			a.SetFixedPosition = p
		case 6:
			a.SetCannedMessageModuleMessages = string(val)
			a.HasSetCanned = true
		case 7:
			a.GetChannelRequest = uint32(decodeVarint(val))
			a.HasGetChannelReq = true
		case 8:
			c := new(Channel)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			a.GetChannelResponse = c
		case 9:
			a.GetConfigRequest = uint32(decodeVarint(val))
			a.HasGetConfigReq = true
		case 10:
			c := new(Config)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			a.GetConfigResponse = c
		case 11:
			a.GetModuleConfigRequest = uint32(decodeVarint(val))
			a.HasGetModuleConfigReq = true
		case 12:
			m := new(ModuleConfig)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			a.GetModuleConfigResponse = m
		case 13:
			a.GetOwnerRequest = decodeVarint(val) != 0
			a.HasGetOwnerReq = true
		case 14:
			u := new(User)
			if err := u.UnmarshalVT(val); err != nil {
				return err
			}
			a.GetOwnerResponse = u
		case 15:
			a.GetDeviceMetadataRequest = decodeVarint(val) != 0
			a.HasGetMetadataReq = true
		case 16:
			m := new(DeviceMetadata)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			a.GetDeviceMetadataResponse = m
		case 17:
			a.BeginEditSettings = decodeVarint(val) != 0
			a.HasBeginEdit = true
		case 18:
			a.CommitEditSettings = decodeVarint(val) != 0
			a.HasCommitEdit = true
		case 19:
			a.NodedbReset = int32(uint32(decodeVarint(val)))
			a.HasNodedbReset = true
		case 20:
			a.RemoveByNodenum = uint32(decodeVarint(val))
			a.HasRemoveByNodenum = true
		case 21:
			a.ShutdownSeconds = int32(uint32(decodeVarint(val)))
			a.HasShutdown = true
		case 22:
			a.RebootSeconds = int32(uint32(decodeVarint(val)))
			a.HasReboot = true
		case 23:
			a.RebootOtaSeconds = int32(uint32(decodeVarint(val)))
			a.HasRebootOta = true
		case 24:
			a.FactoryResetDevice = int32(uint32(decodeVarint(val)))
			a.HasFactoryResetDevice = true
		case 25:
			a.FactoryResetConfig = int32(uint32(decodeVarint(val)))
			a.HasFactoryResetConfig = true
		case 26:
			a.EnterDfuModeRequest = decodeVarint(val) != 0
			a.HasEnterDfu = true
		}
		return nil
	})
}
