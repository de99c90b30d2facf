package cliente

import (
	"github.com/samber/lo"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/pkg/rut"
)

// ToPerfil perfil del cliente con direcciones y medidores.
func ToPerfil(c *entity.Cliente, direcciones []*entity.Direccion, medidores []*entity.Medidor) dto.PerfilResponse {
	return dto.PerfilResponse{
		ID:            c.ID,
		RUT:           rut.Format(c.RUT),
		NumeroCliente: c.NumeroCliente,
		Nombre:        c.Nombre,
		Apellido:      c.Apellido,
		Email:         c.Email,
		Telefono:      c.Telefono,
		EstadoCuenta:  c.EstadoCuenta,
		Direcciones: lo.Map(direcciones, func(d *entity.Direccion, _ int) dto.DireccionResponse {
			return dto.DireccionResponse{
				ID:        d.ID,
				Direccion: d.Direccion,
				Poblacion: d.Poblacion,
				Comuna:    d.Comuna,
				RutaID:    d.RutaID,
				OrdenRuta: d.OrdenRuta,
			}
		}),
		Medidores: lo.Map(medidores, func(m *entity.Medidor, _ int) dto.MedidorResponse {
			return ToMedidorResponse(m)
		}),
	}
}

// ToMedidorResponse mapea un medidor.
func ToMedidorResponse(m *entity.Medidor) dto.MedidorResponse {
	return dto.MedidorResponse{
		ID:               m.ID,
		DireccionID:      m.DireccionID,
		ClienteID:        m.ClienteID,
		NumeroSerie:      m.NumeroSerie,
		Marca:            m.Marca,
		Diametro:         m.Diametro,
		FechaInstalacion: m.FechaInstalacion,
		Estado:           m.Estado,
	}
}

// ToSolicitudResponse mapea una solicitud de repactación.
func ToSolicitudResponse(s *entity.SolicitudRepactacion) dto.SolicitudResponse {
	return dto.SolicitudResponse{
		ID:                s.ID,
		ClienteID:         s.ClienteID,
		MontoDeuda:        s.MontoDeuda,
		CuotasSolicitadas: s.CuotasSolicitadas,
		Motivo:            s.Motivo,
		Estado:            s.Estado,
		ComentarioAdmin:   s.ComentarioAdmin,
		CreatedAt:         s.CreatedAt,
		RevisadoAt:        s.RevisadoAt,
	}
}
