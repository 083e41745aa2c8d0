package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kiosco-app/ventas-api/internal/application/dto"
	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/entity"
	"github.com/kiosco-app/ventas-api/internal/domain/repository"
	"github.com/kiosco-app/ventas-api/pkg/logger"
)

// CreateSaleUseCase coordina la transacción de venta: arma el plan con el
// Builder (solo lecturas), lo aplica como una unidad atómica (cabecera +
// líneas + descuentos de stock + total) y relee el resultado confirmado.
// Nunca reintenta por su cuenta: un commit fallido no deja nada aplicado,
// así que reintentar es decisión segura del caller.
type CreateSaleUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	saleRepo     repository.SaleRepository
	builder      Builder
	notifier     Notifier        // nil = envío de comprobantes deshabilitado
	renderer     ReceiptRenderer // nil = sin PDF adjunto
	log          *logger.Logger
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	saleRepo repository.SaleRepository,
	notifier Notifier,
	renderer ReceiptRenderer,
	log *logger.Logger,
) *CreateSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateSaleUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
		notifier:     notifier,
		renderer:     renderer,
		log:          log,
	}
}

// CreateSale crea la venta completa. Fallas de validación (pedido vacío,
// cantidad inválida, producto inexistente, stock insuficiente) vuelven como
// errores tipados de dominio sin tocar la base; cualquier falla dentro de la
// transacción revierte todo, nunca queda una venta parcial.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	// Cliente opcional (venta de mostrador si viene vacío)
	var customer *entity.Customer
	if in.CustomerID != "" {
		c, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
		customer = c
	}

	// Snapshot del catálogo: una sola lectura para todos los ids del pedido
	ids := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	var products map[string]*entity.Product
	if len(ids) > 0 {
		var err error
		products, err = uc.productRepo.GetByIDs(ids)
		if err != nil {
			return nil, err
		}
	}

	lines := make([]LineRequest, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, LineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	plan, err := uc.builder.Build(in.CustomerID, lines, products)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	saleID := uuid.New().String()

	// Unidad de trabajo atómica: cabecera en 0, líneas, descuentos
	// condicionales y total definitivo. Commit o Rollback completo.
	err = uc.txRunner.Run(ctx, func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error {
		sale := &entity.Sale{
			ID:         saleID,
			CustomerID: plan.CustomerID,
			CreatedAt:  now,
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, line := range plan.Lines {
			if err := saleRepo.CreateLine(&entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    saleID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  line.Subtotal,
			}); err != nil {
				return err
			}
		}
		// Decremento condicional y atómico en la base, por línea. Revalida
		// el stock al momento del commit: cierra la ventana entre armado y
		// confirmación bajo ventas concurrentes sobre el mismo producto.
		for _, line := range plan.Lines {
			if err := productRepo.DecrementStockIfAvailable(line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return saleRepo.UpdateTotal(saleID, plan.Total)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", saleID).
		Str("customer_id", plan.CustomerID).
		Str("total", plan.Total.StringFixed(2)).
		Int("lines", len(plan.Lines)).
		Msg("venta confirmada")

	// Releer lo confirmado para la respuesta (no se responde con el plan)
	resp, err := uc.readBack(saleID, customer)
	if err != nil {
		return nil, err
	}

	// Comprobante por email: fuera de la transacción, la venta ya está
	// confirmada. Una falla acá se informa aparte, jamás revierte.
	if in.SendReceipt {
		if msg := uc.sendReceipt(ctx, resp, customer); msg != "" {
			resp.ReceiptError = msg
		}
	}

	return resp, nil
}

func (uc *CreateSaleUseCase) readBack(saleID string, customer *entity.Customer) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.saleRepo.GetLinesBySaleID(saleID)
	if err != nil {
		return nil, err
	}
	customerName := ""
	if customer != nil {
		customerName = customer.DisplayName()
	}
	return toSaleResponse(sale, customerName, lines), nil
}

// sendReceipt renderiza el ticket y lo envía al email del cliente.
// Devuelve un mensaje de error legible (vacío si todo salió bien).
func (uc *CreateSaleUseCase) sendReceipt(ctx context.Context, sale *dto.SaleResponse, customer *entity.Customer) string {
	if uc.notifier == nil {
		return ""
	}
	if customer == nil || customer.Email == "" {
		return "el cliente no tiene email registrado"
	}

	var receiptPDF []byte
	if uc.renderer != nil {
		pdf, err := uc.renderer.Render(receiptDataFrom(sale))
		if err != nil {
			uc.log.Warn().Err(err).Str("sale_id", sale.ID).Msg("no se pudo renderizar el comprobante")
			return domain.ErrDeliveryFailed.Error()
		}
		receiptPDF = pdf
	}

	subject := "Comprobante de compra " + sale.ID
	body := "Gracias por tu compra. Total: $" + sale.Total.StringFixed(2)
	if err := uc.notifier.Send(ctx, customer.Email, subject, body, receiptPDF); err != nil {
		uc.log.Warn().Err(err).Str("sale_id", sale.ID).Str("to", customer.Email).Msg("envío de comprobante falló")
		return domain.ErrDeliveryFailed.Error()
	}
	return ""
}

func toSaleResponse(sale *entity.Sale, customerName string, lines []*repository.SaleLineWithProduct) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:           sale.ID,
		CustomerID:   sale.CustomerID,
		CustomerName: customerName,
		Total:        sale.Total,
		CreatedAt:    sale.CreatedAt,
		Lines:        make([]dto.SaleLineResponse, 0, len(lines)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:          l.Line.ID,
			ProductID:   l.Line.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Line.Quantity,
			UnitPrice:   l.Line.UnitPrice,
			Subtotal:    l.Line.Subtotal,
		})
	}
	return resp
}
